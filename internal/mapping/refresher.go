package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"LanMeter/internal/logging"
	"LanMeter/internal/model"
)

// Refresher periodically re-fetches the endpoint-to-egress mapping from the
// authority and swaps it into the resolver. Fetch failures are logged and
// leave the previous snapshot serving; the next tick retries.
type Refresher struct {
	url      string
	interval time.Duration
	client   *http.Client
	resolver *Resolver

	done chan struct{}
	wg   sync.WaitGroup
}

// NewRefresher creates a refresher for the given authority URL.
func NewRefresher(url string, interval time.Duration, resolver *Resolver) *Refresher {
	return &Refresher{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		resolver: resolver,
		done:     make(chan struct{}),
	}
}

// FetchOnce performs a single fetch of the authority's status document.
func (f *Refresher) FetchOnce(ctx context.Context) (*model.StatusDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authority returned status %d", resp.StatusCode)
	}

	var doc model.StatusDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode status document: %w", err)
	}
	return &doc, nil
}

// Start launches the refresh loop.
func (f *Refresher) Start() {
	f.wg.Add(1)
	go f.run()
	logging.Infof("Started mapping refresher for %s with interval %s", f.url, f.interval)
}

// Stop terminates the refresh loop and waits for it to exit.
func (f *Refresher) Stop() {
	close(f.done)
	f.wg.Wait()
}

func (f *Refresher) run() {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.refresh()
		case <-f.done:
			return
		}
	}
}

func (f *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), f.interval)
	defer cancel()

	doc, err := f.FetchOnce(ctx)
	if err != nil {
		logging.Errorf("Failed to fetch NIC mappings: %v", err)
		return
	}
	f.resolver.Replace(doc)
	logging.Debugf("Updated NIC mappings: %d endpoints", len(doc.Mappings))
}
