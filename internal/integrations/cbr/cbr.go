package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// CBRClient handles integration with the Central Bank of Russia
type CBRClient struct {
	url    string
	margin float64
	client *http.Client
	log    *logrus.Logger
	now    func() time.Time
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url:    cfg.CBRURL,
		margin: cfg.BankMargin,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

const (
	soapNamespace = "http://www.w3.org/2003/05/soap-envelope"
	cbrNamespace  = "http://web.cbr.ru/"
	keyRateAction = cbrNamespace + "KeyRate"
	dateLayout    = "2006-01-02"

	// keyRateLookback covers the gap between key rate decisions
	keyRateLookback = 30 * 24 * time.Hour
)

// keyRateEnvelope builds the KeyRate SOAP 1.2 request for the lookback window ending at now
func keyRateEnvelope(now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := doc.CreateElement("soap12:Envelope")
	envelope.CreateAttr("xmlns:soap12", soapNamespace)
	keyRate := envelope.CreateElement("soap12:Body").CreateElement("KeyRate")
	keyRate.CreateAttr("xmlns", cbrNamespace)
	keyRate.CreateElement("fromDate").SetText(now.Add(-keyRateLookback).Format(dateLayout))
	keyRate.CreateElement("ToDate").SetText(now.Format(dateLayout))

	return doc.WriteToBytes()
}

func (c *CBRClient) post(ctx context.Context, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", keyRateAction)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("key rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key rate service returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read key rate response: %w", err)
	}
	c.log.WithField("bytes", len(body)).Debug("Key rate response received")
	return body, nil
}

type keyRateEntry struct {
	date time.Time
	rate float64
}

// latestKeyRate returns the most recent dated entry of a KeyRate response
func latestKeyRate(body []byte) (keyRateEntry, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return keyRateEntry{}, fmt.Errorf("failed to parse XML: %w", err)
	}

	rows := doc.FindElements("//diffgram/KeyRate/KR")
	if len(rows) == 0 {
		return keyRateEntry{}, fmt.Errorf("no key rate data found in XML")
	}

	var latest keyRateEntry
	for i, row := range rows {
		rateEl, dateEl := row.SelectElement("Rate"), row.SelectElement("DT")
		if rateEl == nil || dateEl == nil {
			return keyRateEntry{}, fmt.Errorf("key rate row %d is missing DT or Rate", i+1)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateEl.Text()), 64)
		if err != nil {
			return keyRateEntry{}, fmt.Errorf("failed to parse rate: %w", err)
		}
		date, err := time.Parse(time.RFC3339, strings.TrimSpace(dateEl.Text()))
		if err != nil {
			return keyRateEntry{}, fmt.Errorf("failed to parse rate date: %w", err)
		}
		if i == 0 || date.After(latest.date) {
			latest = keyRateEntry{date: date, rate: rate}
		}
	}
	return latest, nil
}

// ReferenceRate retrieves the current key rate from CBR and adds the bank margin
func (c *CBRClient) ReferenceRate(ctx context.Context) (models.ReferenceRate, error) {
	now := c.now()
	envelope, err := keyRateEnvelope(now)
	if err != nil {
		return models.ReferenceRate{}, fmt.Errorf("failed to build key rate request: %w", err)
	}
	body, err := c.post(ctx, envelope)
	if err != nil {
		return models.ReferenceRate{}, err
	}
	latest, err := latestKeyRate(body)
	if err != nil {
		return models.ReferenceRate{}, err
	}

	rate := models.ReferenceRate{
		KeyRate:       latest.rate,
		Margin:        c.margin,
		Rate:          latest.rate + c.margin,
		EffectiveDate: latest.date.Format(dateLayout),
		FetchedAt:     now.UTC().Format(time.RFC3339),
	}
	c.log.WithFields(logrus.Fields{
		"key_rate":       rate.KeyRate,
		"margin":         rate.Margin,
		"effective_date": rate.EffectiveDate,
	}).Info("Retrieved key rate")
	return rate, nil
}
