package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/voiyce/voiyce/internal/recorder"
)

// dictate is a terminal host for the recorder widget: it captures microphone
// audio with an external recorder command, sends it through the relay, and
// commits the reviewed text to the system clipboard.
func main() {
	_ = godotenv.Load()

	relayURL := flag.String("relay", envOr("RELAY_URL", "http://localhost:3000"), "relay server base URL")
	micCmd := flag.String("mic", envOr("MIC_COMMAND", "arecord"), "recorder command producing raw 16-bit LE PCM on stdout")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	committer := recorder.NewCommitter(recorder.SystemClipboard{}, logger)

	widget := recorder.New(recorder.Config{
		Device: &recorder.ExecDevice{
			Command: *micCmd,
			Args:    recorder.DefaultALSAArgs,
			Logger:  logger,
		},
		Relay:     recorder.NewHTTPRelay(recorder.HTTPRelayConfig{BaseURL: *relayURL}),
		Renderer:  &terminalMeter{},
		Notifier:  terminalNotifier{},
		Committer: committer,
		MIMEType:  "audio/pcm",
		Logger:    logger,
	})
	defer widget.Destroy()

	ctx := context.Background()

	fmt.Println("voiyce dictation")
	fmt.Println("  r          start/stop recording")
	fmt.Println("  s          summarize the reviewed text")
	fmt.Println("  e <text>   replace the reviewed text")
	fmt.Println("  y          confirm and copy to clipboard")
	fmt.Println("  c          cancel")
	fmt.Println("  q          quit")

	scanner := bufio.NewScanner(os.Stdin)
	printState(widget)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "r":
			widget.ToggleCapture(ctx)
		case line == "s":
			widget.Summarize(ctx)
		case strings.HasPrefix(line, "e "):
			widget.SetReviewText(strings.TrimPrefix(line, "e "))
		case line == "y":
			widget.ConfirmAndCommit(ctx)
		case line == "c":
			widget.Cancel()
		case line == "q":
			return
		}
		printState(widget)
	}
}

func printState(w *recorder.Widget) {
	if text := w.ReviewText(); text != "" {
		fmt.Printf("[%s] %s\n> ", w.State(), text)
		return
	}
	fmt.Printf("[%s]\n> ", w.State())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// terminalMeter draws a one-line input level bar on stderr.
type terminalMeter struct{}

func (m *terminalMeter) RenderLevel(level float64) error {
	const width = 30
	filled := int(level * width)
	if filled > width {
		filled = width
	}
	fmt.Fprintf(os.Stderr, "\r[%-*s]", width, strings.Repeat("#", filled))
	return nil
}

// terminalNotifier prints toasts as plain lines.
type terminalNotifier struct{}

func (terminalNotifier) Notify(msg string) {
	fmt.Printf("\n%s\n> ", msg)
}
