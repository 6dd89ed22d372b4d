package errors

import "testing"

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{"valid", 1200, 16, false},
		{"zero width", 0, 16, true},
		{"negative width", -1, 16, true},
		{"zero height", 1200, 0, true},
		{"negative height", 1200, -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDimensions) {
				t.Errorf("expected INVALID_DIMENSIONS code, got %q", GetCode(err))
			}
		})
	}
}

func TestValidateMinWidth(t *testing.T) {
	valid := []string{"0.1", "0", "5", "0.5%", "100%"}
	for _, s := range valid {
		if err := ValidateMinWidth(s); err != nil {
			t.Errorf("ValidateMinWidth(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "abc", "%", "-1", "-0.5%"}
	for _, s := range invalid {
		if err := ValidateMinWidth(s); err == nil {
			t.Errorf("ValidateMinWidth(%q) = nil, want error", s)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	if err := ValidateOutputPath("out.svg"); err != nil {
		t.Errorf("ValidateOutputPath(out.svg) = %v, want nil", err)
	}
	if err := ValidateOutputPath(""); err == nil {
		t.Error("ValidateOutputPath(empty) = nil, want error")
	}
	if err := ValidateOutputPath("a\x00b"); err == nil {
		t.Error("ValidateOutputPath(null byte) = nil, want error")
	}
}
