package weather

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"
	"github.com/sirupsen/logrus"

	"github.com/lox/greenhouse/internal/metrics"
	"github.com/lox/greenhouse/internal/models"
)

const DefaultTimeout = 30 * time.Second

// Fetcher opens weather sources: local paths, http(s) URLs and ftp URLs.
type Fetcher struct {
	Client     *http.Client
	MaxElapsed time.Duration // retry budget for http sources
	Log        logrus.FieldLogger
}

func NewFetcher(log logrus.FieldLogger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		Client:     &http.Client{Timeout: DefaultTimeout},
		MaxElapsed: 2 * time.Minute,
		Log:        log,
	}
}

// Open returns the raw content of src.
func (f *Fetcher) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, or a Windows drive letter
		return os.Open(src)
	}

	start := time.Now()
	var body []byte
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		body, err = f.fetchHTTP(ctx, u)
	case "ftp":
		body, err = f.fetchFTP(ctx, u)
	case "file":
		return os.Open(u.Path)
	default:
		return nil, fmt.Errorf("unsupported weather source scheme %q", u.Scheme)
	}
	metrics.WeatherFetchLatency.WithLabelValues(u.Scheme).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WeatherFetchesTotal.WithLabelValues(u.Scheme, "error").Inc()
		return nil, err
	}
	metrics.WeatherFetchesTotal.WithLabelValues(u.Scheme, "ok").Inc()
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch weather: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch weather: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch weather: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.MaxElapsed
	notify := func(err error, wait time.Duration) {
		f.Log.WithError(err).WithField("retry_in", wait).Warn("weather fetch failed")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchFTP(ctx context.Context, u *url.URL) ([]byte, error) {
	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(DefaultTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Load reads and concatenates the given sources, in order, then checks the
// combined series. Flagged records are logged and counted but kept.
func (f *Fetcher) Load(ctx context.Context, format Format, sources ...string) ([]models.WeatherRecord, error) {
	var records []models.WeatherRecord
	for _, src := range sources {
		rc, err := f.Open(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src, err)
		}
		recs, err := Read(rc, format)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src, err)
		}
		f.Log.WithFields(logrus.Fields{"source": src, "records": len(recs)}).Debug("loaded weather")
		records = append(records, recs...)
	}

	issues, err := Check(records)
	if err != nil {
		return nil, err
	}
	for _, is := range issues {
		for _, flag := range is.Flags {
			metrics.WeatherRecordsFlagged.WithLabelValues(flag).Inc()
		}
	}
	if len(issues) > 0 {
		f.Log.WithFields(logrus.Fields{
			"flagged": len(issues),
			"first":   records[issues[0].Index].Time.Format(TimestampLayout),
			"flags":   QualityFlagsToJSON(issues[0].Flags),
		}).Warn("weather records failed quality checks")
	}
	return records, nil
}
