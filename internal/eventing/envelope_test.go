package eventing

import (
	"testing"
	"time"
)

type mintedSample struct {
	Account    string    `json:"account"`
	Credits    string    `json:"credits"`
	OccurredAt time.Time `json:"occurred_at"`
}

type tradedSample struct {
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
}

func TestBuildEnvelopeLiftsAccount(t *testing.T) {
	occurred := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	env, err := BuildEnvelope(mintedSample{Account: "producer-1", Credits: "10", OccurredAt: occurred}, Meta{MarketID: "market-1"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if env.Account != "producer-1" {
		t.Fatalf("account = %q", env.Account)
	}
	if !env.OccurredAt.Equal(occurred) {
		t.Fatalf("occurred_at = %v", env.OccurredAt)
	}
	if env.EventType != "eventing.mintedSample" {
		t.Fatalf("event type = %q", env.EventType)
	}
	if env.EventID == "" || env.CorrelationID != env.EventID {
		t.Fatalf("ids: %q / %q", env.EventID, env.CorrelationID)
	}

	env, err = BuildEnvelope(&tradedSample{Buyer: "buyer-1", Seller: "seller-1"}, Meta{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if env.Account != "buyer-1" {
		t.Fatalf("buyer not lifted: %q", env.Account)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	registry := NewRegistry()
	registry.Register(mintedSample{})

	env, err := BuildEnvelope(mintedSample{Account: "a", Credits: "1"}, Meta{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	decoded, err := registry.DecodePayload(env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sample, ok := decoded.(mintedSample)
	if !ok {
		t.Fatalf("decoded type %T", decoded)
	}
	if sample.Account != "a" || sample.Credits != "1" {
		t.Fatalf("decoded = %+v", sample)
	}

	_, err = registry.DecodePayload(Envelope{EventType: "eventing.unknown"})
	if err == nil {
		t.Fatal("expected unknown type error")
	}
}
