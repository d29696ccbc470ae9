package lsp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/internal/lsp"
)

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})
	c.open("a: u8 = 1\n")
	var items []lsp.CompletionItem
	c.call(lsp.MethodCompletion, hoverParams(0, 0), &items)

	srv := httptest.NewServer(lsp.MetricsHandler())
	defer srv.Close()

	scrape := func() string {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return ""
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return ""
		}
		return string(body)
	}

	// Metrics are recorded after the response is sent.
	completion := `ritobin_lsp_messages_total{kind="request",method="textDocument/completion",result="ok"}`
	require.Eventually(t, func() bool {
		return strings.Contains(scrape(), completion)
	}, waitTimeout, 10*time.Millisecond)

	body := scrape()
	assert.Contains(t, body, "ritobin_lsp_published_diagnostics_bucket")
	assert.Contains(t, body, "ritobin_lsp_open_documents")
	assert.Contains(t, body, "ritobin_lsp_message_duration_seconds_bucket")
}
