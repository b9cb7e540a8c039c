// Package main runs a demo client: it submits an async solve and follows the
// run's WebSocket stream until the run finishes.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

type runEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	body := []byte(`{"async":true,"vehicles":3,"capacity":45,"iterations":500,"tabuTenure":7,"polish":true,"sites":[
	  {"name":"depot","demand":0,"y":0,"x":0},
	  {"name":"c01","demand":12,"y":4,"x":9},{"name":"c02","demand":8,"y":-3,"x":7},
	  {"name":"c03","demand":15,"y":10,"x":2},{"name":"c04","demand":6,"y":-8,"x":-4},
	  {"name":"c05","demand":9,"y":6,"x":-7},{"name":"c06","demand":11,"y":-2,"x":-9},
	  {"name":"c07","demand":7,"y":12,"x":-3},{"name":"c08","demand":14,"y":-11,"x":5},
	  {"name":"c09","demand":5,"y":3,"x":14},{"name":"c10","demand":10,"y":-6,"x":12}]}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "planner")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusAccepted {
		log.Fatalf("solve: unexpected status %s", resp.Status)
	}
	var accepted struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		log.Fatal(err)
	}
	log.Printf("Run ID: %s", accepted.ID)

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/runs/" + accepted.ID + "/stream"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	for {
		var evt runEvent
		if err := c.ReadJSON(&evt); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("read: %v", err)
			}
			return
		}
		b, _ := json.Marshal(evt.Data)
		log.Printf("WS <- %s: %s", evt.Type, b)
	}
}
