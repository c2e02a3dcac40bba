package cbr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR><DT>2026-10-16T00:00:00+03:00</DT><Rate>16.50</Rate></KR>
            <KR><DT>2026-10-15T00:00:00+03:00</DT><Rate>17.00</Rate></KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(url string) *CBRClient {
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := NewCBRClient(&config.Config{CBRURL: url, CBRMargin: 5.0}, log)
	c.now = func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestGetKeyRate(t *testing.T) {
	var gotMethod, gotAction, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAction = r.Header.Get("SOAPAction")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetKeyRate(context.Background())
	require.NoError(t, err)
	require.Equal(t, "21.5", rate.String())
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "http://web.cbr.ru/KeyRate", gotAction)
	require.Contains(t, gotBody, "<fromDate>2026-09-17</fromDate>")
	require.Contains(t, gotBody, "<ToDate>2026-10-17</ToDate>")
}

func TestGetKeyRateErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"bad status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"not xml": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<<<"))
		},
		"no rates": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<diffgram><KeyRate></KeyRate></diffgram>`))
		},
		"bad rate": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<diffgram><KeyRate><KR><Rate>n/a</Rate></KR></KeyRate></diffgram>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := newTestClient(srv.URL).GetKeyRate(context.Background())
			require.Error(t, err)
		})
	}
}
