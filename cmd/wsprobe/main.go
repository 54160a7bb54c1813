// Command wsprobe logs in, opens notification sockets and counts the events
// they receive. It is a smoke and load check for the realtime path.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the probe results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64

	mu     sync.Mutex
	byType map[string]int64
}

func (m *Metrics) countEvent(eventType string) {
	atomic.AddInt64(&m.EventsReceived, 1)
	m.mu.Lock()
	m.byType[eventType]++
	m.mu.Unlock()
}

var metrics = Metrics{byType: make(map[string]int64)}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	email := flag.String("email", "meron@devhub.local", "Account email")
	password := flag.String("password", "Demo-Passw0rd!", "Account password")
	clients := flag.Int("clients", 5, "Number of concurrent sockets")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	flag.Parse()

	log.Printf("Probing %s with %d sockets for %v", *host, *clients, *duration)

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, stop, &wg)
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func login(host, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := httpClient.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Session.AccessToken, nil
}

func getTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	// Tickets are single use, so every socket needs its own.
	ticket, err := getTicket(host, token)
	if err != nil {
		log.Printf("ticket: %v", err)
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "ticket=" + url.QueryEscape(ticket)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Printf("dial: %v", err)
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					atomic.AddInt64(&metrics.Errors, 1)
				}
				return
			}
			var event struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
				event.Type = "unknown"
			}
			metrics.countEvent(event.Type)
		}
	}()

	select {
	case <-stop:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func printMetrics() {
	log.Printf("connections: attempted=%d ok=%d failed=%d errors=%d",
		metrics.ConnectionsAttempted, metrics.ConnectionsSuccess, metrics.ConnectionsFailed, metrics.Errors)
	log.Printf("events received: %d", metrics.EventsReceived)

	types := make([]string, 0, len(metrics.byType))
	for t := range metrics.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.Printf("  %s: %d", t, metrics.byType[t])
	}
}
