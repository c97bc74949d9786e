package coingecko

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"

	"findash/pkg/market"
	"findash/pkg/market/exchanges/restclient"
)

// This test uses go-vcr to record/replay a real simple price call.
// It skips by default if cassette is absent and RECORD_CASSETTES != 1.
func TestProvider_Price_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "coingecko_simple_price")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	defer func() { _ = r.Stop() }()

	provider := NewProvider(WithClientOptions(restclient.WithHTTPClient(&http.Client{Transport: r})))
	res, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "bitcoin", Currency: "usd"})
	assert.NoError(t, err, "Price should not error")
	if assert.NotNil(t, res) {
		assert.Greater(t, res.Price, 0.0, "price should be positive")
	}
}
