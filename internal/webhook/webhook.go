// Package webhook posts alert events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/eventlog"
	"github.com/Mavwarf/alerttone/internal/httputil"
)

// Send posts body to the given URL as application/json. Custom headers are
// applied after the default Content-Type, so callers can override it.
// Header values are expanded with os.ExpandEnv to support $VAR secrets.
func Send(url string, body []byte, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := httputil.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "webhook")
}

// Notifier posts alert outcomes in the background. Only events a person
// watching the alert cares about are sent: plays, skips and failures.
type Notifier struct {
	url     string
	headers map[string]string
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewNotifier returns a Notifier posting to url.
func NewNotifier(url string, headers map[string]string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{url: url, headers: headers, logger: logger}
}

// Observe posts e without blocking the caller.
func (n *Notifier) Observe(e eventlog.Event) {
	switch e.Kind {
	case eventlog.KindSynthesized, eventlog.KindStopped:
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		n.logger.Warn("webhook: encode event", zap.Error(err))
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := Send(n.url, body, n.headers); err != nil {
			n.logger.Warn("webhook post failed", zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight posts have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
