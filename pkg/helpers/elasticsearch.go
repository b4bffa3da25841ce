package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// PingES checks the cluster answers the info endpoint.
func PingES(ctx context.Context, es *elasticsearch.Client) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := es.Info(es.Info.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}
