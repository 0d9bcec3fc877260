package data

import "testing"

func TestTemplate40_Decode_ZeroBits(t *testing.T) {
	tmpl := &Template40{
		ReferenceValue:     7.5,
		NumBitsPerValue:    0,
		NumberOfDataValues: 3,
	}
	values, err := tmpl.Decode(nil, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	for _, v := range values {
		if v != 7.5 {
			t.Errorf("expected constant reference value 7.5, got %v", v)
		}
	}
}

func TestTemplate40_ParseTemplate(t *testing.T) {
	raw := make([]byte, 12)
	// Reference value 0.0, scale factors 0, bits 0 (all bytes already zero)
	raw[8] = 0  // NumBitsPerValue
	raw[9] = 0  // OriginalFieldType
	raw[10] = 0 // CompressionType (lossless)
	raw[11] = 0 // CompressionRatio

	tmpl, err := ParseTemplate40(100, raw)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}
	if tmpl.NumberOfDataValues != 100 {
		t.Errorf("expected NumberOfDataValues 100, got %d", tmpl.NumberOfDataValues)
	}
	if tmpl.TemplateNumber() != 40 {
		t.Errorf("expected template number 40, got %d", tmpl.TemplateNumber())
	}
}
