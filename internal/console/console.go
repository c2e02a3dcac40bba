package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const dateLayout = "2006-01-02 15:04"

// RateQuoter suggests an interest rate when the user leaves it blank
type RateQuoter interface {
	GetKeyRate(ctx context.Context) (decimal.Decimal, error)
}

// Console runs the interactive menu over a text stream
type Console struct {
	svc   *service.Service
	rates RateQuoter
	log   *logrus.Logger

	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

// New creates a console session. rates may be nil.
// Passwords are read without echo when in is a terminal.
func New(svc *service.Service, rates RateQuoter, in io.Reader, out io.Writer, log *logrus.Logger) *Console {
	c := &Console{
		svc:   svc,
		rates: rates,
		log:   log,
		in:    bufio.NewReader(in),
		out:   out,
	}
	c.readPassword = c.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.readPassword = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(c.out)
			return string(b), err
		}
	}
	return c
}

// Run drives the login loop until the user quits or input ends
func (c *Console) Run(ctx context.Context) error {
	c.println("\n=== Loan Application System ===")
	for {
		user, err := c.login(ctx)
		if err != nil {
			return ignoreEOF(err)
		}

		if user != nil {
			if err := c.mainMenu(ctx, user); err != nil {
				return ignoreEOF(err)
			}
			again, err := c.confirm("\nWould you like to login again? (y/n)")
			if err != nil {
				return ignoreEOF(err)
			}
			if !again {
				c.println("\nThank you for using the Loan Application System!")
				return nil
			}
			continue
		}

		retry, err := c.confirm("\nLogin failed. Would you like to try again? (y/n)")
		if err != nil {
			return ignoreEOF(err)
		}
		if !retry {
			c.println("\nGoodbye!")
			return nil
		}
	}
}

// login returns a nil user when the attempt failed
func (c *Console) login(ctx context.Context) (*models.User, error) {
	c.println("\n=== Login ===")
	username, err := c.prompt("Username: ")
	if err != nil {
		return nil, err
	}
	password, err := c.promptPassword("Password: ")
	if err != nil {
		return nil, err
	}

	user, err := c.svc.Authenticate(ctx, username, password)
	switch {
	case err == nil:
		c.println("\nLogin successful!")
		return user, nil
	case errors.Is(err, service.ErrInvalidCredentials):
		register, err := c.confirm("\nInvalid credentials. Would you like to register? (y/n)")
		if err != nil || !register {
			return nil, err
		}
		return c.register(ctx)
	default:
		c.storeError("during login", err)
		return nil, nil
	}
}

// register signs up a new user, who is then logged in
func (c *Console) register(ctx context.Context) (*models.User, error) {
	c.println("\n=== Registration ===")
	username, err := c.prompt("Choose a username: ")
	if err != nil {
		return nil, err
	}
	password, err := c.promptPassword("Choose a password: ")
	if err != nil {
		return nil, err
	}
	fullName, err := c.prompt("Full name: ")
	if err != nil {
		return nil, err
	}

	user, err := c.svc.Register(ctx, username, password, fullName)
	switch {
	case err == nil:
		c.println("\nRegistration successful! You can now login.")
		return user, nil
	case errors.Is(err, service.ErrUserExists):
		c.println("\nUsername already exists. Please choose another.")
	case errors.Is(err, service.ErrValidation):
		c.invalid(err)
	default:
		c.storeError("during registration", err)
	}
	return nil, nil
}

func (c *Console) mainMenu(ctx context.Context, user *models.User) error {
	for {
		c.println("\n=== Main Menu ===")
		c.println("1. Apply for a loan")
		c.println("2. Make a payment")
		c.println("3. Check balance")
		c.println("4. View payment history")
		c.println("5. Logout")

		choice, err := c.prompt("\nEnter your choice (1-5): ")
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = c.applyForLoan(ctx, user.ID)
		case "2":
			err = c.makePayment(ctx, user.ID)
		case "3":
			c.checkBalance(ctx, user.ID)
		case "4":
			c.paymentHistory(ctx, user.ID)
		case "5":
			c.println("\nLogged out successfully!")
			return nil
		default:
			c.println("\nInvalid choice. Please enter 1-5.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) applyForLoan(ctx context.Context, userID int64) error {
	c.println("\n=== Apply for Loan ===")
	amountText, err := c.prompt("Loan amount: $")
	if err != nil {
		return err
	}
	amount, err := service.ParseAmount(amountText)
	if err != nil {
		c.invalid(err)
		return nil
	}

	rateText, err := c.prompt(c.ratePrompt())
	if err != nil {
		return err
	}
	rate, ok := c.interestRate(ctx, rateText)
	if !ok {
		return nil
	}

	termText, err := c.prompt("Loan term (months): ")
	if err != nil {
		return err
	}
	termMonths, err := service.ParseTerm(termText)
	if err != nil {
		c.invalid(err)
		return nil
	}

	loan, err := c.svc.ApplyForLoan(ctx, userID, amount, rate, termMonths)
	switch {
	case err == nil:
		c.printf("\nLoan application submitted! Loan ID: %d\n", loan.ID)
	case errors.Is(err, service.ErrValidation):
		c.invalid(err)
	default:
		c.storeError("applying for loan", err)
	}
	return nil
}

func (c *Console) ratePrompt() string {
	if c.rates != nil {
		return "Interest rate (%, blank for suggested): "
	}
	return "Interest rate (%): "
}

// interestRate parses the typed rate, falling back to a quote when blank
func (c *Console) interestRate(ctx context.Context, text string) (decimal.Decimal, bool) {
	if strings.TrimSpace(text) == "" && c.rates != nil {
		rate, err := c.rates.GetKeyRate(ctx)
		if err != nil {
			c.log.WithError(err).Warn("Key rate quote failed")
			c.printf("\nCould not get a suggested rate: %v\n", err)
			return decimal.Zero, false
		}
		c.printf("Using suggested rate: %s%%\n", rate.String())
		return rate, true
	}

	rate, err := service.ParseRate(text)
	if err != nil {
		c.invalid(err)
		return decimal.Zero, false
	}
	return rate, true
}

func (c *Console) makePayment(ctx context.Context, userID int64) error {
	c.println("\n=== Make a Payment ===")
	loans, err := c.svc.ListLoansWithBalance(ctx, userID, true)
	if err != nil {
		c.storeError("making payment", err)
		return nil
	}
	if len(loans) == 0 {
		c.println("\nNo active loans with remaining balance.")
		return nil
	}

	c.println("\nYour active loans with remaining balance:")
	c.balanceTable("ID", loans)

	idText, err := c.prompt("\nEnter loan ID to pay: ")
	if err != nil {
		return err
	}
	loanID, err := service.ParseID(idText)
	if err != nil {
		c.invalid(err)
		return nil
	}

	amountText, err := c.prompt("Payment amount: $")
	if err != nil {
		return err
	}
	amount, err := service.ParseAmount(amountText)
	if err != nil {
		c.invalid(err)
		return nil
	}

	_, err = c.svc.RecordPayment(ctx, userID, loanID, amount)
	switch {
	case err == nil:
		c.println("\nPayment recorded successfully!")
	case errors.Is(err, service.ErrNotOwner):
		c.println("\nInvalid loan ID or not your loan.")
	case errors.Is(err, service.ErrValidation):
		c.invalid(err)
	default:
		c.storeError("making payment", err)
	}
	return nil
}

func (c *Console) checkBalance(ctx context.Context, userID int64) {
	c.println("\n=== Loan Balances ===")
	loans, err := c.svc.ListLoansWithBalance(ctx, userID, false)
	if err != nil {
		c.storeError("checking balance", err)
		return
	}
	if len(loans) == 0 {
		c.println("\nYou don't have any loans.")
		return
	}
	c.println()
	c.balanceTable("Loan ID", loans)
}

func (c *Console) paymentHistory(ctx context.Context, userID int64) {
	c.println("\n=== Payment History ===")
	payments, err := c.svc.PaymentHistory(ctx, userID)
	if err != nil {
		c.storeError("viewing payment history", err)
		return
	}
	if len(payments) == 0 {
		c.println("\nNo payment history found.")
		return
	}

	c.printf("\n%-8s %-10s %-15s %-20s\n", "ID", "Loan ID", "Amount", "Date")
	c.println(strings.Repeat("-", 60))
	for _, p := range payments {
		c.printf("%-8d %-10d $%-14s %-20s\n", p.ID, p.LoanID, p.Amount.StringFixed(2), p.PaymentDate.Format(dateLayout))
	}
}

func (c *Console) balanceTable(idHeader string, loans []models.LoanBalance) {
	c.printf("%-8s %-15s %-15s\n", idHeader, "Original Amt", "Remaining")
	c.println(strings.Repeat("-", 40))
	for _, l := range loans {
		c.printf("%-8d $%-14s $%-14s\n", l.LoanID, l.Principal.StringFixed(2), l.Remaining.StringFixed(2))
	}
}

func (c *Console) invalid(err error) {
	c.printf("\n%s\n", capitalize(err.Error()))
}

func (c *Console) storeError(action string, err error) {
	c.log.WithError(err).Errorf("Error %s", action)
	c.printf("\nError %s: %v\n", action, err)
}

func (c *Console) confirm(question string) (bool, error) {
	c.println(question)
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

func (c *Console) prompt(label string) (string, error) {
	c.printf("%s", label)
	return c.readLine()
}

func (c *Console) promptPassword(label string) (string, error) {
	c.printf("%s", label)
	return c.readPassword()
}

// readLine returns the next line without its terminator.
// A final line without a newline is returned before io.EOF.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
