package pnl

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"
)

// HTTP plumbing for the quote source.

// quoteCache is a RoundTripper caching successful responses on disk until
// the end of the UTC day. Quote endpoints serve the same latest price for
// hours, so repeated runs over the same order log stay off the network.
type quoteCache struct {
	base http.RoundTripper
}

// cacheKey embeds the UTC day, so entries expire at midnight without any
// cleanup bookkeeping.
func cacheKey(req *http.Request) string {
	day := time.Now().UTC().Format("2006-01-02")
	sum := sha1.Sum([]byte(day + " " + req.Method + " " + req.URL.String()))
	return fmt.Sprintf("pnl-quote-%x", sum)
}

func (c *quoteCache) RoundTrip(req *http.Request) (*http.Response, error) {
	file := filepath.Join(os.TempDir(), cacheKey(req))

	if content, err := os.ReadFile(file); err == nil {
		if resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req); err == nil {
			return resp, nil
		}
		// unreadable entry, refetch
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%s %s%s %s", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	// A failure to store is never a failure to fetch: serve the live
	// response uncached instead.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return resp, nil
	}
	if err := os.WriteFile(file, content, 0600); err != nil {
		log.Printf("quote cache write failed (ignored): %v", err)
	}
	// Serve from the dump so a live fetch and a cache hit yield identical
	// responses.
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// cached returns an HTTP client whose quote responses expire daily.
func cached() *http.Client {
	return &http.Client{Transport: &quoteCache{base: http.DefaultTransport}}
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %s%s: %s", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
