package cbr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR><DT>2026-10-14T00:00:00+03:00</DT><Rate>16.50</Rate></KR>
            <KR><DT>2026-10-13T00:00:00+03:00</DT><Rate>17.00</Rate></KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(url string) *CBRClient {
	c := NewCBRClient(&config.Config{CBRURL: url, BankMargin: 5}, testLogger())
	c.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestReferenceRate(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "http://web.cbr.ru/KeyRate", r.Header.Get("SOAPAction"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).ReferenceRate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 16.5, rate.KeyRate)
	assert.Equal(t, 5.0, rate.Margin)
	assert.Equal(t, 21.5, rate.Rate)
	assert.Equal(t, "2026-10-14", rate.EffectiveDate)
	assert.Equal(t, "2026-10-15T12:00:00Z", rate.FetchedAt)
	assert.Contains(t, gotBody, "<fromDate>2026-09-15</fromDate>")
	assert.Contains(t, gotBody, "<ToDate>2026-10-15</ToDate>")
}

func TestReferenceRate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ReferenceRate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLatestKeyRate_PicksMostRecentDate(t *testing.T) {
	body := []byte(`<diffgram><KeyRate>
		<KR><DT>2026-07-25T00:00:00+03:00</DT><Rate>18.00</Rate></KR>
		<KR><DT>2026-09-12T00:00:00+03:00</DT><Rate>17.00</Rate></KR>
		<KR><DT>2026-08-01T00:00:00+03:00</DT><Rate>17.50</Rate></KR>
	</KeyRate></diffgram>`)

	latest, err := latestKeyRate(body)
	require.NoError(t, err)
	assert.Equal(t, 17.0, latest.rate)
	assert.Equal(t, "2026-09-12", latest.date.Format(dateLayout))
}

func TestLatestKeyRate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", "<Envelope></Body>", "failed to parse XML"},
		{"no rows", `<Envelope><Body/></Envelope>`, "no key rate data found in XML"},
		{"missing rate", `<diffgram><KeyRate><KR><DT>2026-10-14T00:00:00+03:00</DT></KR></KeyRate></diffgram>`, "key rate row 1 is missing DT or Rate"},
		{"bad rate", `<diffgram><KeyRate><KR><DT>2026-10-14T00:00:00+03:00</DT><Rate>n/a</Rate></KR></KeyRate></diffgram>`, "failed to parse rate"},
		{"bad date", `<diffgram><KeyRate><KR><DT>yesterday</DT><Rate>16.5</Rate></KR></KeyRate></diffgram>`, "failed to parse rate date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := latestKeyRate([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKeyRateEnvelope(t *testing.T) {
	body, err := keyRateEnvelope(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(body))
	keyRate := doc.FindElement("//Body/KeyRate")
	require.NotNil(t, keyRate)
	assert.Equal(t, cbrNamespace, keyRate.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "2026-01-30", keyRate.SelectElement("fromDate").Text())
	assert.Equal(t, "2026-03-01", keyRate.SelectElement("ToDate").Text())
}

type stubSource struct {
	calls int
	rate  models.ReferenceRate
	err   error
}

func (s *stubSource) ReferenceRate(context.Context) (models.ReferenceRate, error) {
	s.calls++
	return s.rate, s.err
}

func TestCachedRateProvider(t *testing.T) {
	src := &stubSource{rate: models.ReferenceRate{KeyRate: 16, Margin: 5, Rate: 21}}
	cache := NewMemoryRateCache()
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	p := NewCachedRateProvider(src, cache, time.Hour, testLogger())

	rate, err := p.ReferenceRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, rate.Rate)

	_, err = p.ReferenceRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second read should hit the cache")

	now = now.Add(2 * time.Hour)
	_, err = p.ReferenceRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry should be refetched")
}

func TestCachedRateProvider_SourceError(t *testing.T) {
	boom := errors.New("upstream down")
	p := NewCachedRateProvider(&stubSource{err: boom}, NewMemoryRateCache(), time.Hour, testLogger())

	_, err := p.ReferenceRate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestMemoryRateCache_Empty(t *testing.T) {
	_, err := NewMemoryRateCache().Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
}
