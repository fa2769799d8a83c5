// watch subscribes to a running focustrack dashboard and prints the
// live tracking result stream to the terminal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/focuslab/focustrack/pkg/engine"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws/results", "results websocket URL")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: dial %s: %v\n", *url, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s (Ctrl+C to stop)\n", *url)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.Close()
		os.Exit(0)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Connection closed: %v\n", err)
			return
		}

		var result engine.TrackingResult
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}

		if !result.FaceDetected {
			fmt.Println("no face")
			continue
		}

		focus := "not focused"
		if result.EyesFocused {
			focus = "FOCUSED"
		}
		moving := ""
		if result.HeadMoving {
			moving = "  moving"
		}
		fmt.Printf("distance %5.1f cm  gaze (%+5.1f, %+5.1f) deg  %s%s\n",
			result.FaceDistance, result.GazeAngleX, result.GazeAngleY, focus, moving)
	}
}
