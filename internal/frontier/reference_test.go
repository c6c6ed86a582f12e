package frontier

import (
	"errors"
	"regexp"
	"testing"
)

func TestQueryParamParser_ParseReference(t *testing.T) {
	parser := QueryParamParser{Param: "cid"}

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain param", "https://bilasolur.is/CarDetails.aspx?cid=123456", "123456", false},
		{"param among others", "https://bilasolur.is/CarDetails.aspx?p=2&cid=98765&s=1", "98765", false},
		{"missing param", "https://bilasolur.is/CarDetails.aspx?p=2", "", true},
		{"empty param", "https://bilasolur.is/CarDetails.aspx?cid=", "", true},
		{"unparseable url", "://not-a-url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseReference(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReference() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedReference) {
				t.Errorf("ParseReference() error = %v, want ErrMalformedReference", err)
			}
			if got != tt.want {
				t.Errorf("ParseReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumericTokenParser_ParseReference(t *testing.T) {
	parser := NumericTokenParser{}

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"path token", "https://hekla.is/notadir-bilar/view/123456", "123456", false},
		{"query token", "https://brimborg.is/bill?id=987654", "987654", false},
		{"first of two tokens", "https://dealer.is/12345/photo/67890", "12345", false},
		{"too short", "https://dealer.is/view/1234", "", true},
		{"no token", "https://dealer.is/um-okkur", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseReference(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReference() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathPatternParser_ParseReference(t *testing.T) {
	parser := PathPatternParser{Pattern: regexp.MustCompile(`/marketplace/item/(\d+)`)}

	got, err := parser.ParseReference("https://www.facebook.com/marketplace/item/1234567890/")
	if err != nil {
		t.Fatalf("ParseReference() error = %v", err)
	}
	if got != "1234567890" {
		t.Errorf("ParseReference() = %q, want %q", got, "1234567890")
	}

	if _, err = parser.ParseReference("https://www.facebook.com/marketplace/category/cars"); err == nil {
		t.Error("ParseReference() expected error for non-matching url")
	}
}

func TestNewPathPatternParser(t *testing.T) {
	if _, err := NewPathPatternParser(`/item/(\d+)`); err != nil {
		t.Errorf("NewPathPatternParser() error = %v", err)
	}
	if _, err := NewPathPatternParser(`[invalid`); err == nil {
		t.Error("NewPathPatternParser() expected error for invalid regexp")
	}
	if _, err := NewPathPatternParser(`/item/\d+`); err == nil {
		t.Error("NewPathPatternParser() expected error for pattern without capture group")
	}
}

func TestCorrelationToken_MatchesAcrossURLShapes(t *testing.T) {
	aggregator := QueryParamParser{Param: "cid"}
	dealer := NumericTokenParser{}

	aggToken, ok := aggregator.CorrelationToken("https://bilasolur.is/CarDetails.aspx?cid=555123")
	if !ok {
		t.Fatal("aggregator CorrelationToken() returned no token")
	}

	dealerToken, ok := dealer.CorrelationToken("https://hekla.is/bilar/555123")
	if !ok {
		t.Fatal("dealer CorrelationToken() returned no token")
	}

	if aggToken != dealerToken {
		t.Errorf("tokens differ: aggregator %q, dealer %q", aggToken, dealerToken)
	}
}

func TestParserRegistry(t *testing.T) {
	registry := NewParserRegistry()
	registry.Register("hekla", NumericTokenParser{})

	if _, err := registry.Lookup("hekla"); err != nil {
		t.Errorf("Lookup() error = %v", err)
	}
	if _, err := registry.Lookup("unknown"); err == nil {
		t.Error("Lookup() expected error for unregistered source")
	}
}
