package suggest

import (
	"testing"
	"time"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

func TestResponseCache_SetAndGet(t *testing.T) {
	cache := newResponseCache(time.Minute)
	defer cache.Close()

	response := &service.SuggestionResponse{
		Payees: model.Suggestions{{ID: "p1", Name: "Starbucks", Confidence: 0.9}},
	}

	if _, found := cache.get("key"); found {
		t.Error("get on empty cache reported a hit")
	}

	cache.set("key", response)

	got, found := cache.get("key")
	if !found {
		t.Fatal("get after set reported a miss")
	}
	if len(got.Payees) != 1 || got.Payees[0].ID != "p1" {
		t.Errorf("cached response = %+v, want the stored payees", got)
	}
	if cache.size() != 1 {
		t.Errorf("size = %d, want 1", cache.size())
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	cache := newResponseCache(10 * time.Millisecond)
	defer cache.Close()

	cache.set("key", &service.SuggestionResponse{})

	time.Sleep(25 * time.Millisecond)

	if _, found := cache.get("key"); found {
		t.Error("get returned an expired entry")
	}
}

func TestResponseCache_DefaultTTL(t *testing.T) {
	cache := newResponseCache(0)
	defer cache.Close()

	if cache.ttl != 30*time.Second {
		t.Errorf("default ttl = %v, want 30s", cache.ttl)
	}
}
