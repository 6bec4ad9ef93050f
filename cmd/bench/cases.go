// README: Scenario cases for the chat API; includes HTTP, DB, Redis, concurrency and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"samanainn/internal/infra"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

// chatReply is the subset of POST /api/chat/message the scenarios assert on.
type chatReply struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	Response       struct {
		Message string            `json:"message"`
		Error   bool              `json:"error"`
		Results []json.RawMessage `json:"results"`
		UI      struct {
			ShowBookingButton bool `json:"showBookingButton"`
			ShowPricingButton bool `json:"showPricingButton"`
		} `json:"ui"`
		Context struct {
			ProcessingStage string `json:"processingStage"`
		} `json:"context"`
	} `json:"response"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := infra.NewDB(ctx, r.cfg.DSN); err == nil {
			r.db = db
		} else {
			fmt.Printf("db unavailable: %v\n", err)
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = infra.NewRedis(r.cfg.RedisAddr)
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "redis reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := infra.PingRedis(ctx, r.redis); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply every migration file in order",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				if err := infra.ApplyMigrations(ctx, r.db, r.cfg.MigrationsDir); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "every CREATE TABLE in migrations/ exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationsDir)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),

		// Routing
		chatCase("Chat: lodging search runs in the first turn", base, "Busco un hotel barato cerca de la playa", func(c chatReply) string {
			if c.Response.Context.ProcessingStage != "query" {
				return "stage=" + c.Response.Context.ProcessingStage
			}
			return ""
		}),
		chatCase("Chat: gastronomy search", base, "¿Dónde puedo comer mariscos?", func(c chatReply) string {
			if c.Response.Context.ProcessingStage != "query" {
				return "stage=" + c.Response.Context.ProcessingStage
			}
			return ""
		}),
		chatCase("Chat: booking keyword goes to booking stage", base, "Quiero reservar un hotel, ¿cuál es el precio?", func(c chatReply) string {
			if c.Response.Context.ProcessingStage != "booking" {
				return "stage=" + c.Response.Context.ProcessingStage
			}
			if !c.Response.UI.ShowPricingButton {
				return "pricing button missing"
			}
			return ""
		}),
		chatCase("Chat: greeting gets the welcome", base, "hola", func(c chatReply) string {
			if c.Response.Context.ProcessingStage != "generic" {
				return "stage=" + c.Response.Context.ProcessingStage
			}
			return ""
		}),
		httpCase("Chat: missing message -> 400", base+"/api/chat/message", map[string]any{"sessionId": "bench"}, []int{400}),

		// Conversation lifecycle
		{
			Name:  "Conversation: follow-up, history, close",
			Focus: "same conversation across turns, close is one-way",
			Run: func(ctx context.Context, r *Runner) Result {
				return conversationFlow(ctx, r, base)
			},
		},
		httpCaseMethod("Conversation: list without sessionId -> 400", http.MethodGet, base+"/api/chat/conversations", nil, []int{400}),
		httpCaseMethod("Conversation: unknown id -> 404", http.MethodGet, base+"/api/chat/conversations/does-not-exist/messages", nil, []int{404}),

		// Static surfaces
		httpCaseMethod("Banner: gastronomy", http.MethodGet, base+"/api/chat/banner?type=gastronomy", nil, []int{200}),
		httpCase("Booking URL: accommodation", base+"/api/chat/booking-url", map[string]any{
			"type": "accommodation", "slug": "hotel-las-ballenas", "checkIn": "2026-03-01", "adults": 2,
		}, []int{200}),
		httpCase("Booking URL: missing type -> 400", base+"/api/chat/booking-url", map[string]any{"slug": "x"}, []int{400}),

		// Concurrency
		{
			Name:  "Concurrency: parallel turns on one conversation",
			Focus: "turns are serialized; every message is stored once",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentTurns(ctx, r, base)
			},
		},

		// Performance
		{
			Name:  "Perf: message throughput",
			Focus: "sustained chat turns",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/chat/message", map[string]any{
					"message":   "¿Qué excursiones hay para ver ballenas?",
					"sessionId": "bench-perf",
				})
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, _, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			latency := time.Since(start)
			if contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

// chatCase posts one opening message and runs check on the decoded reply;
// a non-empty return from check is the failure note.
func chatCase(name, base, message string, check func(chatReply) string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "chat routing",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			reply, err := r.send(ctx, base, map[string]any{"message": message, "sessionId": "bench"})
			latency := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			if !reply.Success || reply.Response.Error {
				return Result{Status: "FAIL", Latency: latency, Note: reply.Response.Message}
			}
			if note := check(reply); note != "" {
				return Result{Status: "FAIL", Latency: latency, Note: note}
			}
			return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("results=%d", len(reply.Response.Results))}
		},
	}
}

func conversationFlow(ctx context.Context, r *Runner, base string) Result {
	start := time.Now()
	first, err := r.send(ctx, base, map[string]any{"message": "¿Qué actividades hay en Samaná?", "sessionId": "bench-flow"})
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	second, err := r.send(ctx, base, map[string]any{"message": "¿Y para familias?", "conversationId": first.ConversationID})
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if second.ConversationID != first.ConversationID {
		return Result{Status: "FAIL", Note: "follow-up opened a new conversation"}
	}

	status, body, err := r.do(ctx, http.MethodGet, base+"/api/chat/conversations/"+first.ConversationID+"/messages", nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("history status=%d err=%v", status, err)}
	}
	var history struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &history); err != nil || history.Count != 4 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("history count=%d", history.Count)}
	}

	closeURL := base + "/api/chat/conversations/" + first.ConversationID + "/close"
	if status, _, _ := r.do(ctx, http.MethodPost, closeURL, nil); status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("close status=%d", status)}
	}
	if status, _, _ := r.do(ctx, http.MethodPost, closeURL, nil); status != http.StatusConflict {
		return Result{Status: "FAIL", Note: fmt.Sprintf("second close status=%d", status)}
	}
	return Result{Status: "PASS", Latency: time.Since(start)}
}

func concurrentTurns(ctx context.Context, r *Runner, base string) Result {
	opening, err := r.send(ctx, base, map[string]any{"message": "hola", "sessionId": "bench-concurrency"})
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}

	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	succ := 0
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reply, err := r.send(ctx, base, map[string]any{
				"message":        fmt.Sprintf("pregunta %d sobre Samaná", i),
				"conversationId": opening.ConversationID,
			})
			if err != nil || reply.ConversationID != opening.ConversationID {
				return
			}
			mu.Lock()
			succ++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	url := fmt.Sprintf("%s/api/chat/conversations/%s/messages?limit=%d", base, opening.ConversationID, 2*(r.cfg.Concurrency+1))
	status, body, err := r.do(ctx, http.MethodGet, url, nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("history status=%d err=%v", status, err)}
	}
	var history struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(body, &history)
	want := 2 * (succ + 1)
	if history.Count != want {
		return Result{Status: "FAIL", Note: fmt.Sprintf("success=%d messages=%d want=%d", succ, history.Count, want)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("success=%d/%d", succ, r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var latencies []time.Duration
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				start := time.Now()
				status, _, err := r.do(ctx, http.MethodPost, url, payload)
				elapsed := time.Since(start)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
					latencies = append(latencies, elapsed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p95 := latencies[len(latencies)*95/100]
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Latency: p95, Note: fmt.Sprintf("rps=%.1f errors=%d p95", rps, errCount)}
}

func (r *Runner) send(ctx context.Context, base string, body map[string]any) (chatReply, error) {
	var reply chatReply
	status, raw, err := r.do(ctx, http.MethodPost, base+"/api/chat/message", body)
	if err != nil {
		return reply, err
	}
	if status != http.StatusOK {
		return reply, fmt.Errorf("status=%d", status)
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return reply, err
	}
	return reply, nil
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
