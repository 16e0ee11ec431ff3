package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	serverAddr := flag.String("server", "ws://127.0.0.1:9001", "address of the exchange's websocket ingress tier")
	trader := flag.Uint64("trader", 0, "trader id (compulsory)")
	action := flag.String("action", "bid", "action to perform: ['bid', 'ask', 'cancel', 'update']")

	orderType := flag.String("type", "limit", "order type: 'limit', 'market' or 'fill_and_kill'")
	price := flag.Int64("price", 100, "limit price")
	qtyStr := flag.String("qty", "10", "quantity or comma-separated list (e.g. 10,20,50)")

	orderID := flag.Uint64("id", 0, "order id, required for cancel/update")

	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*serverAddr, nil)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as trader %d\n", *serverAddr, *trader)

	go readReports(conn)

	ot := "0"
	switch strings.ToLower(*orderType) {
	case "market":
		ot = "2"
	case "fill_and_kill":
		ot = "1"
	}

	switch strings.ToLower(*action) {
	case "bid", "ask":
		tag := "B"
		if strings.ToLower(*action) == "ask" {
			tag = "A"
		}
		for _, qty := range parseQuantities(*qtyStr) {
			msg := fmt.Sprintf("%s %d %d %s %d", tag, qty, *price, ot, *trader)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				log.Printf("failed to send %q: %v", msg, err)
				continue
			}
			fmt.Printf("-> %s\n", msg)
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		msg := fmt.Sprintf("C %d %d", *orderID, *trader)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			log.Printf("failed to send cancel: %v", err)
		} else {
			fmt.Printf("-> %s\n", msg)
		}

	case "update":
		qty, err := strconv.ParseInt(strings.Split(*qtyStr, ",")[0], 10, 64)
		if err != nil {
			log.Fatalf("invalid -qty for update: %v", err)
		}
		msg := fmt.Sprintf("U %d %d %d", *orderID, qty, *trader)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			log.Printf("failed to send update: %v", err)
		} else {
			fmt.Printf("-> %s\n", msg)
		}

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("\nlistening for reports... (press Ctrl+C to exit)")
	select {}
}

// parseQuantities splits a comma-separated string into a slice of quantities.
func parseQuantities(input string) []int64 {
	var result []int64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseInt(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return result
}

// readReports prints every JSON report the ingress tier broadcasts.
func readReports(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("connection lost: %v", err)
			return
		}
		fmt.Printf("\n[REPORT] %s\n", string(data))
	}
}
