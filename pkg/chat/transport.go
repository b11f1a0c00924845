package chat

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var (
	transportOnce sync.Once
	transport     atomic.Pointer[http.Transport]
)

// sharedTransport returns the process-wide HTTP transport, building it on
// first use. All clients share its connection pool.
func sharedTransport() *http.Transport {
	transportOnce.Do(func() {
		transport.Store(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		})
	})
	return transport.Load()
}

// CloseIdleConnections releases pooled connections of the shared
// transport. It does not build the transport, so calling it before any
// client exists is a no-op and later clients still get a working pool.
func CloseIdleConnections() {
	if t := transport.Load(); t != nil {
		t.CloseIdleConnections()
	}
}
