package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"blogsearch/internal/config"
	"blogsearch/internal/kakao"
	"blogsearch/internal/logger"
	"blogsearch/internal/search"
)

func main() {
	configPath := flag.String("config", "", "path to blogsearch.yaml")
	web := flag.String("web", "http://localhost:8080", "base URL of a running web adapter")
	keyword := flag.String("keyword", "golang", "keyword used for the probes")
	flag.Parse()

	fmt.Println("🔍 === STARTING COMPONENT DIAGNOSTICS ===")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	failed := false
	report := func(err error, ok string) {
		if err != nil {
			failed = true
			fmt.Printf("❌ FAILED: %v\n", err)
			return
		}
		fmt.Printf("✅ PASS. %s\n", ok)
	}

	fmt.Println("\n[1] Loading configuration...")
	cfg, err := config.Load(*configPath)
	report(err, "credential present, upstream "+cfg.Upstream.BaseURL)

	if err == nil {
		fmt.Println("\n[2] Testing blog search provider...")
		client, err := kakao.New(cfg.Upstream, logger.New(cfg.Log.Level, false, os.Stderr))
		if err != nil {
			report(err, "")
		} else {
			n, err := checkUpstream(ctx, client, *keyword)
			report(err, fmt.Sprintf("%d documents for %q", n, *keyword))
		}
	}

	fmt.Printf("\n[3] Testing Web Adapter (%s)...\n", *web)
	report(checkWeb(ctx, http.DefaultClient, *web, *keyword), "health, page and api answered")

	fmt.Println("\n🏁 === DIAGNOSTICS COMPLETE ===")
	if failed {
		os.Exit(1)
	}
}

func checkUpstream(ctx context.Context, s search.Searcher, keyword string) (int, error) {
	res, err := s.Search(ctx, search.NewParams(keyword))
	if err != nil {
		return 0, err
	}
	return res.Len(), nil
}

func checkWeb(ctx context.Context, c *http.Client, base, keyword string) error {
	base = strings.TrimRight(base, "/")

	if _, err := fetch(ctx, c, base+"/healthz", http.StatusOK); err != nil {
		return err
	}
	if _, err := fetch(ctx, c, base+"/", http.StatusOK); err != nil {
		return err
	}

	body, err := fetch(ctx, c, base+"/api/search?query="+url.QueryEscape(keyword), http.StatusOK)
	if err != nil {
		return err
	}
	var res struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("api/search: %w", err)
	}
	if res.Status != "loaded" {
		return fmt.Errorf("api/search: status %q", res.Status)
	}
	return nil
}

func fetch(ctx context.Context, c *http.Client, u string, want int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return nil, fmt.Errorf("GET %s: HTTP %d", u, resp.StatusCode)
	}
	return body, nil
}
