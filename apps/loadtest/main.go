// Command loadtest fires concurrent add-to-cart requests for one user and
// checks that every request landed in the cart exactly once.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"go-grocery/pkg/config"
	"go-grocery/pkg/jwt"
)

// 统计器
type stats struct {
	mu        sync.Mutex
	created   int
	throttled int
	failed    int
}

func (s *stats) record(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch status {
	case http.StatusCreated:
		s.created++
	case http.StatusTooManyRequests:
		s.throttled++
	default:
		s.failed++
	}
}

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	baseURL := flag.String("url", "http://localhost:8000", "store base URL")
	userID := flag.Int64("user", 1, "user id to sign the token for")
	productID := flag.Uint("product", 1, "product to add")
	total := flag.Int("n", 50, "number of concurrent requests")
	flag.Parse()

	c, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	token, err := jwt.NewManager(c.Jwt.Secret, c.Jwt.Issuer, time.Hour).GenerateToken(*userID, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	do := func(method, path string) (*http.Response, error) {
		req, err := http.NewRequest(method, *baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return client.Do(req)
	}

	// 清空购物车, 从 0 开始数
	if resp, err := do(http.MethodDelete, "/shopping_cart/"); err == nil {
		resp.Body.Close()
	}

	fmt.Printf("adding product %d to user %d's cart with %d concurrent requests\n", *productID, *userID, *total)
	var (
		wg sync.WaitGroup
		st stats
	)
	start := time.Now()
	wg.Add(*total)
	for i := 0; i < *total; i++ {
		go func() {
			defer wg.Done()
			resp, err := do(http.MethodPost, fmt.Sprintf("/products/%d/shopping_cart/", *productID))
			if err != nil {
				st.record(0)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			st.record(resp.StatusCode)
		}()
	}
	wg.Wait()
	fmt.Printf("took %v: created=%d throttled=%d failed=%d\n", time.Since(start), st.created, st.throttled, st.failed)

	resp, err := do(http.MethodGet, "/shopping_cart/")
	if err != nil {
		fmt.Fprintln(os.Stderr, "view cart:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var cart struct {
		TotalQuantity *int64 `json:"total_quantity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		fmt.Fprintln(os.Stderr, "decode cart:", err)
		os.Exit(1)
	}
	var got int64
	if cart.TotalQuantity != nil {
		got = *cart.TotalQuantity
	}
	if got != int64(st.created) {
		fmt.Printf("lost updates: %d created, cart holds %d\n", st.created, got)
		os.Exit(1)
	}
	fmt.Printf("cart holds %d, matches created requests\n", got)
}
