package birdeye

import "net/http"

// authTransport stamps the Birdeye headers on every REST request.
type authTransport struct {
	apiKey string
	chain  string
	agent  string
	base   http.RoundTripper
}

func (t authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", t.apiKey)
	req.Header.Set("x-chain", t.chain)
	if t.agent != "" {
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}
