package signingtoken

import (
	"errors"
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tok, err := Encode(secret, "alice@example.com", "Alice", "doc_1", time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	claims, err := Decode(secret, tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.RecipientEmail != "alice@example.com" || claims.RecipientName != "Alice" || claims.DocumentID != "doc_1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestDecode_ExpiredToken(t *testing.T) {
	tok, err := Encode(secret, "alice@example.com", "Alice", "doc_1", -time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(secret, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	tok, _ := Encode(secret, "alice@example.com", "", "", time.Hour)
	if _, err := Decode([]byte("other"), tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode(secret, "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecode_MissingEmailRejected(t *testing.T) {
	tok, _ := Encode(secret, "", "Alice", "doc_1", time.Hour)
	if _, err := Decode(secret, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseLink(t *testing.T) {
	l, err := ParseLink("https://app.example.com/recipientSignPdf/doc_1?recipient=alice%40example.com&checkId=chk_9&token=abc&isClose=true")
	if err != nil {
		t.Fatalf("ParseLink: %v", err)
	}
	if l.Recipient != "alice@example.com" || l.CheckID != "chk_9" || l.Token != "abc" || !l.IsClose {
		t.Fatalf("unexpected link: %+v", l)
	}
}
