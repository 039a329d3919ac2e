package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

// Result is the outcome of one HTTP call.
type Result struct {
	Status int
	Body   string
	Err    error
}

type product struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Version string `json:"version"`
	Price   int64  `json:"price"`
}

func main() {
	baseURL := pflag.String("base", "http://localhost:3000", "server base url")
	username := pflag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	password := pflag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	token := pflag.String("token", os.Getenv("ADMIN_TOKEN"), "admin token")
	workers := pflag.IntP("workers", "n", 50, "concurrent adds of the same name and version")
	pflag.Parse()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}

	res := do(client, http.MethodPost, *baseURL+"/admin-login", map[string]string{
		"username": *username, "password": *password, "token": *token,
	})
	if res.Err != nil || res.Status != http.StatusOK {
		fail("login failed: status=%d err=%v body=%s", res.Status, res.Err, res.Body)
	}
	fmt.Println("login ok")

	// 1) duplicate race: every worker adds the same (name, version), exactly one may win
	name := "loadtest-" + uuid.NewString()[:8]
	fmt.Printf("start duplicate race: name=%s workers=%d\n", name, *workers)
	results := raceAdd(client, *baseURL, name, *workers)
	count := printSummary("duplicate_race", results)
	if count[http.StatusOK] != 1 || count[http.StatusConflict] != *workers-1 {
		fail("expected 1x200 and %dx409", *workers-1)
	}

	// 2) round trip: another version, list, delete by name in a different case, list again
	res = do(client, http.MethodPost, *baseURL+"/add-product", map[string]any{
		"name": name, "owner": "loadtest", "version": "2.0", "price": "1.000",
	})
	if res.Status != http.StatusOK {
		fail("add second version: status=%d body=%s", res.Status, res.Body)
	}
	if n := countByName(client, *baseURL, name); n != 2 {
		fail("expected 2 rows for %s, got %d", name, n)
	}
	res = do(client, http.MethodDelete, *baseURL+"/products/by-name/"+url.PathEscape(strings.ToUpper(name)), nil)
	if res.Status != http.StatusOK {
		fail("delete: status=%d body=%s", res.Status, res.Body)
	}
	if n := countByName(client, *baseURL, name); n != 0 {
		fail("expected 0 rows for %s after delete, got %d", name, n)
	}
	fmt.Println("round trip ok")

	_ = do(client, http.MethodPost, *baseURL+"/admin-logout", nil)
}

func raceAdd(client *http.Client, baseURL, name string, n int) []Result {
	results := make([]Result, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			results[idx] = do(client, http.MethodPost, baseURL+"/add-product", map[string]any{
				"name": name, "owner": fmt.Sprintf("worker-%d", idx), "version": "1.0", "price": 100,
			})
		}(i)
	}
	close(start)
	wg.Wait()
	return results
}

func countByName(client *http.Client, baseURL, name string) int {
	res := do(client, http.MethodGet, baseURL+"/products", nil)
	if res.Status != http.StatusOK {
		fail("list: status=%d body=%s", res.Status, res.Body)
	}
	var list []product
	if err := json.Unmarshal([]byte(res.Body), &list); err != nil {
		fail("list decode: %v", err)
	}
	n := 0
	for _, p := range list {
		if p.Name == name {
			n++
		}
	}
	return n
}

// printSummary prints and returns the status code distribution.
func printSummary(name string, results []Result) map[int]int {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 401, 409, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
	return count
}

func do(client *http.Client, method, target string, body any) Result {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, r)
	if err != nil {
		return Result{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(b)}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
