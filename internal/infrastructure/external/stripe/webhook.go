package stripe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/salescribe-team/salescribe/pkg/signature"
)

// Event is a Stripe webhook event envelope. Data.Object is left raw so
// each event type can decode its own shape.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// webhookTolerance bounds how old a signed payload may be before it is
// rejected as a possible replay.
const webhookTolerance = 5 * time.Minute

// VerifyWebhook checks the Stripe-Signature header against the raw
// payload and returns the parsed event. The header carries a timestamp
// and one or more v1 signatures over "{timestamp}.{payload}".
func VerifyWebhook(payload []byte, header, secret string) (*Event, error) {
	timestamp, sigs, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	if time.Since(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("webhook timestamp outside tolerance")
	}

	signed := append([]byte(strconv.FormatInt(timestamp, 10)+"."), payload...)
	valid := false
	for _, sig := range sigs {
		if signature.VerifyHMAC(secret, signed, sig) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &event, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid signature timestamp")
			}
			timestamp = ts
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if timestamp == 0 || len(sigs) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header")
	}
	return timestamp, sigs, nil
}
