package codec

// Identity passes chunk bytes through unchanged.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Decode(compressed []byte, wantSize int) ([]byte, error) {
	if err := checkSize("identity", len(compressed), wantSize); err != nil {
		return nil, err
	}
	return compressed, nil
}

func (Identity) Encode(raw []byte) ([]byte, error) {
	return raw, nil
}
