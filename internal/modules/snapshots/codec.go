package snapshots

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/pulse/internal/modules/dashboard"
)

// Struct fields are keyed by their json tags so the stored payload matches the API shape

func encodeScoreboard(board *dashboard.Scoreboard) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(board); err != nil {
		return nil, fmt.Errorf("failed to encode scoreboard: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeScoreboard(payload []byte) (*dashboard.Scoreboard, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")

	var board dashboard.Scoreboard
	if err := dec.Decode(&board); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard: %w", err)
	}
	return &board, nil
}
