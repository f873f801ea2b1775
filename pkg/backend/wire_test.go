package backend

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/knocoin/console/pkg/models"
)

// The translation table must stay exhaustive: a model field missing from it
// (or a table entry missing from the payload) is a field that silently stops
// persisting.
func TestBotFieldNames_CoversEveryModelField(t *testing.T) {
	modelType := reflect.TypeOf(models.BotConfig{})
	for i := 0; i < modelType.NumField(); i++ {
		name := modelType.Field(i).Name
		if _, ok := botFieldNames[name]; !ok {
			t.Errorf("models.BotConfig field %s missing from botFieldNames", name)
		}
	}
	if len(botFieldNames) != modelType.NumField() {
		t.Errorf("botFieldNames has %d entries, models.BotConfig has %d fields", len(botFieldNames), modelType.NumField())
	}
}

func TestBotFieldNames_MatchPayloadTags(t *testing.T) {
	payloadType := reflect.TypeOf(botPayload{})

	tags := make(map[string]string, payloadType.NumField())
	for i := 0; i < payloadType.NumField(); i++ {
		field := payloadType.Field(i)
		wire, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		tags[field.Name] = wire
	}

	for goName, wireName := range botFieldNames {
		tag, ok := tags[goName]
		if !ok {
			t.Errorf("botPayload has no field %s", goName)
			continue
		}
		if tag != wireName {
			t.Errorf("field %s: table says %q, payload tag says %q", goName, wireName, tag)
		}
	}
}

// Every BotUpdate field must carry the same wire name as the full payload,
// or a partial save would write under a name the backend ignores.
func TestBotUpdate_TagsAgreeWithTable(t *testing.T) {
	updateType := reflect.TypeOf(BotUpdate{})
	for i := 0; i < updateType.NumField(); i++ {
		field := updateType.Field(i)
		wire, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if want := botFieldNames[field.Name]; wire != want {
			t.Errorf("BotUpdate field %s tagged %q, table says %q", field.Name, wire, want)
		}
	}
}

func TestBotWireRoundTrip(t *testing.T) {
	ref := 0.008
	lastBuy := 0.0065
	created := time.Date(2025, 1, 21, 14, 32, 15, 0, time.UTC)

	bot := models.BotConfig{
		ID:                   "7",
		Name:                 "Bot Principal WPOL/KNO",
		TokenPair:            "KNO/WPOL",
		IsActive:             true,
		Status:               models.StatusActive,
		VolatilityPercent:    10,
		ReferencePrice:       &ref,
		BuyAmount:            0.05,
		SellAmount:           0.05,
		MinSwapAmount:        0.01,
		LastBuyPrice:         &lastBuy,
		RandomTradesCount:    20,
		TradingDurationHours: 24,
		WalletAddress:        "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270",
		WalletPrivateKey:     strings.Repeat("ab", 32),
		RPCEndpoint:          "https://polygon-rpc.com",
		WPOLAddress:          "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270",
		KNOAddress:           "0x236fbfAa3Ec9E0B9BA013Df370c098bAd85aD631",
		RouterAddress:        "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff",
		SlippageTolerance:    1,
		GasLimit:             300000,
		GasPrice:             30,
		Balance:              15420.50,
		TotalProfit:          2340.75,
		BuyPriceThreshold:    0.007,
		SellPriceThreshold:   0.009,
		CreatedAt:            &created,
	}

	got := botFromWire(botToWire(bot))

	if got.WalletPrivateKey != "" {
		t.Error("private key must never come back from the wire")
	}
	if got.ID != bot.ID || got.Name != bot.Name || got.TokenPair != bot.TokenPair {
		t.Errorf("identity fields lost: %+v", got)
	}
	if got.VolatilityPercent != 10 || got.ReferencePrice == nil || *got.ReferencePrice != ref {
		t.Errorf("band fields lost: %+v", got)
	}
	if got.WalletAddress != bot.WalletAddress || got.RouterAddress != bot.RouterAddress {
		t.Errorf("wallet fields lost: %+v", got)
	}
	if got.GasLimit != 300000 || got.GasPrice != 30 {
		t.Errorf("gas fields lost: %+v", got)
	}
	if got.BuyPriceThreshold != 0.007 || got.SellPriceThreshold != 0.009 {
		t.Errorf("legacy fields lost: %+v", got)
	}
	if got.CreatedAt == nil || !got.CreatedAt.Equal(created) {
		t.Errorf("created_at lost: %v", got.CreatedAt)
	}
}

func TestBotFromWire_NormalizesDivergentStatus(t *testing.T) {
	got := botFromWire(botPayload{ID: 1, Name: "b", IsActive: true, Status: "paused"})
	if got.Status != models.StatusActive {
		t.Errorf("status = %s, want active for is_active=true", got.Status)
	}

	got = botFromWire(botPayload{ID: 1, Name: "b", IsActive: false, Status: "active"})
	if got.Status != models.StatusPaused {
		t.Errorf("status = %s, want paused for is_active=false", got.Status)
	}
}

func TestParseWireTime(t *testing.T) {
	cases := []string{
		"2025-01-21T14:32:15Z",
		"2025-01-21T14:32:15.123456",
		"2025-01-21T14:32:15",
		"2025-01-21 14:32:15",
	}
	for _, s := range cases {
		if parseWireTime(s) == nil {
			t.Errorf("failed to parse %q", s)
		}
	}
	if parseWireTime("") != nil {
		t.Error("empty string should parse to nil")
	}
	if parseWireTime("not a time") != nil {
		t.Error("garbage should parse to nil")
	}
}
