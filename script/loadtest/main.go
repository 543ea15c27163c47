// Command loadtest drives concurrent transfers against a running API.
// It registers a recipient and a pool of senders, then fires transfers with
// idempotency keys, replaying a share of them to exercise duplicate detection.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const password = "Load!Test9"

type config struct {
	baseURL     string
	concurrency int
	requests    int
	senders     int
	delay       time.Duration
	replayRate  float64
	amounts     []string
}

// sender is a registered user with a beneficiary pointing at the recipient
type sender struct {
	userID        string
	token         string
	beneficiaryID string
}

// result describes one transfer request
type result struct {
	status  int
	elapsed time.Duration
	replay  bool
	err     error
}

// stats aggregates the results of a run
type stats struct {
	mu        sync.Mutex
	elapsed   []time.Duration
	byStatus  map[int]int
	errors    map[string]int
	replays   int
	succeeded int
}

func newStats() *stats {
	return &stats{byStatus: make(map[int]int), errors: make(map[string]int)}
}

func (s *stats) add(r result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed = append(s.elapsed, r.elapsed)
	if r.replay {
		s.replays++
	}
	if r.err != nil {
		s.errors[r.err.Error()]++
		return
	}
	s.byStatus[r.status]++
	if r.status >= 200 && r.status < 300 {
		s.succeeded++
	}
}

// percentile returns the p-th percentile (0-100) of sorted durations
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func parseFlags(args []string) (config, error) {
	cfg := config{}
	fs := pflag.NewFlagSet("loadtest", pflag.ContinueOnError)
	fs.StringVar(&cfg.baseURL, "url", "http://localhost:8000/api", "API base URL")
	fs.IntVarP(&cfg.concurrency, "concurrency", "c", 5, "number of concurrent workers")
	fs.IntVarP(&cfg.requests, "requests", "n", 100, "total number of transfers")
	fs.IntVarP(&cfg.senders, "senders", "s", 3, "number of sending users")
	fs.DurationVar(&cfg.delay, "delay", 100*time.Millisecond, "pause between requests of one worker")
	fs.Float64Var(&cfg.replayRate, "replay-rate", 0.1, "share of requests that reuse an earlier idempotency key")
	fs.StringSliceVar(&cfg.amounts, "amounts", []string{"10.00", "25.50", "40.00", "75.00"}, "transfer amounts to pick from")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.concurrency < 1 || cfg.requests < 1 || cfg.senders < 1 {
		return cfg, errors.New("concurrency, requests and senders must be positive")
	}
	if cfg.replayRate < 0 || cfg.replayRate > 1 {
		return cfg, errors.New("replay-rate must be between 0 and 1")
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	run := uuid.NewString()[:8]

	fmt.Printf("Preparing %d senders against %s\n", cfg.senders, cfg.baseURL)
	senders, err := prepare(client, cfg, run)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Concurrency: %d workers, %d transfers, replay rate %.0f%%\n",
		cfg.concurrency, cfg.requests, cfg.replayRate*100)

	results := newStats()
	jobs := make(chan int, cfg.requests)
	for i := 0; i < cfg.requests; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		keysMu sync.Mutex
		sent   []sentKey
	)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < cfg.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if cfg.delay > 0 {
					time.Sleep(cfg.delay)
				}

				keysMu.Lock()
				var job sentKey
				replay := len(sent) > 0 && rand.Float64() < cfg.replayRate
				if replay {
					job = sent[rand.IntN(len(sent))]
				} else {
					job = sentKey{
						sender: senders[rand.IntN(len(senders))],
						key:    uuid.NewString(),
						amount: cfg.amounts[rand.IntN(len(cfg.amounts))],
					}
					sent = append(sent, job)
				}
				keysMu.Unlock()

				r := send(client, cfg.baseURL, job)
				r.replay = replay
				results.add(r)
			}
		}()
	}
	wg.Wait()

	printResults(cfg, results, time.Since(start))
}

type sentKey struct {
	sender sender
	key    string
	amount string
}

// prepare registers the recipient and senders and links them with beneficiaries
func prepare(client *http.Client, cfg config, run string) ([]sender, error) {
	recipientAccount := accountNumber(0)
	if _, err := register(client, cfg.baseURL, "lt_"+run+"_to", recipientAccount, "0"); err != nil {
		return nil, err
	}

	senders := make([]sender, 0, cfg.senders)
	for i := 1; i <= cfg.senders; i++ {
		username := fmt.Sprintf("lt_%s_%d", run, i)
		userID, err := register(client, cfg.baseURL, username, accountNumber(i), "50000")
		if err != nil {
			return nil, err
		}
		token, err := login(client, cfg.baseURL, username)
		if err != nil {
			return nil, err
		}
		beneficiaryID, err := addBeneficiary(client, cfg.baseURL, userID, token, recipientAccount)
		if err != nil {
			return nil, err
		}
		senders = append(senders, sender{userID: userID, token: token, beneficiaryID: beneficiaryID})
	}
	return senders, nil
}

// accountNumber builds a random 12 digit account number with a non-zero first digit
func accountNumber(seed int) string {
	return fmt.Sprintf("%d%011d", 1+seed%9, rand.Int64N(1e11))
}

func send(client *http.Client, baseURL string, job sentKey) result {
	body := map[string]any{
		"beneficiary_id": job.sender.beneficiaryID,
		"amount":         job.amount,
		"description":    "load test",
	}
	headers := map[string]string{
		"Authorization":   "Bearer " + job.sender.token,
		"Idempotency-Key": job.key,
	}

	start := time.Now()
	status, _, err := call(client, http.MethodPost, baseURL+"/transactions/send/"+job.sender.userID, body, headers)
	return result{status: status, elapsed: time.Since(start), err: err}
}

func register(client *http.Client, baseURL, username, account, balance string) (string, error) {
	status, data, err := call(client, http.MethodPost, baseURL+"/auth/register", map[string]any{
		"username":        username,
		"password":        password,
		"account_number":  account,
		"initial_balance": balance,
	}, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("register %s: HTTP %d", username, status)
	}
	var profile struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return "", err
	}
	return profile.UserID, nil
}

func login(client *http.Client, baseURL, username string) (string, error) {
	status, data, err := call(client, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login %s: HTTP %d", username, status)
	}
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return "", err
	}
	return tokens.AccessToken, nil
}

func addBeneficiary(client *http.Client, baseURL, userID, token, account string) (string, error) {
	status, data, err := call(client, http.MethodPost, baseURL+"/beneficiaries/add/"+userID, map[string]any{
		"name":           "Load Recipient",
		"bank_name":      "HBL",
		"account_number": account,
	}, map[string]string{"Authorization": "Bearer " + token})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("add beneficiary: HTTP %d", status)
	}
	var beneficiary struct {
		BeneficiaryID string `json:"beneficiary_id"`
	}
	if err := json.Unmarshal(data, &beneficiary); err != nil {
		return "", err
	}
	return beneficiary.BeneficiaryID, nil
}

// call sends a JSON request and returns the status and the envelope's data member
func call(client *http.Client, method, url string, body any, headers map[string]string) (int, json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, envelope.Data, nil
}

func printResults(cfg config, s *stats, total time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]time.Duration(nil), s.elapsed...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	var avg time.Duration
	if len(sorted) > 0 {
		avg = sum / time.Duration(len(sorted))
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d (%d replays)\n", cfg.requests, s.replays)
	fmt.Printf("Successful Requests: %d (%.1f%%)\n", s.succeeded, float64(s.succeeded)/float64(cfg.requests)*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", total.Seconds())
	fmt.Printf("Throughput:          %.2f req/s\n", float64(cfg.requests)/total.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avg)
	fmt.Printf("P50 Response:        %v\n", percentile(sorted, 50))
	fmt.Printf("P90 Response:        %v\n", percentile(sorted, 90))
	fmt.Printf("P99 Response:        %v\n", percentile(sorted, 99))
	if len(sorted) > 0 {
		fmt.Printf("Min / Max:           %v / %v\n", sorted[0], sorted[len(sorted)-1])
	}

	fmt.Println("\n----------------- STATUS CODES -----------------")
	codes := make([]int, 0, len(s.byStatus))
	for code := range s.byStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("HTTP %d: %d\n", code, s.byStatus[code])
	}

	if len(s.errors) > 0 {
		fmt.Println("\n----------------- TRANSPORT ERRORS -----------------")
		for msg, count := range s.errors {
			fmt.Printf("%-40s: %d\n", msg, count)
		}
	}
	fmt.Println("================================================")
}
