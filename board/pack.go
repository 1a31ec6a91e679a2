package board

// packWords appends 12-bit words to dst as a continuous MSB-first bit
// stream. An odd word count leaves the last byte padded with four zero bits
// which the driver chain shifts out ahead of the data, so callers flush
// whole frames.
func packWords(dst []byte, words []uint16) []byte {
	i := 0
	for ; i+1 < len(words); i += 2 {
		a, b := words[i]&0xFFF, words[i+1]&0xFFF
		dst = append(dst, byte(a>>4), byte(a<<4)|byte(b>>8), byte(b))
	}
	if i < len(words) {
		a := words[i] & 0xFFF
		dst = append(dst, byte(a>>4), byte(a<<4))
	}
	return dst
}

// unpackWords is the inverse of packWords for an even number of words.
func unpackWords(src []byte) []uint16 {
	words := make([]uint16, 0, len(src)*2/3)
	for i := 0; i+2 < len(src); i += 3 {
		words = append(words,
			uint16(src[i])<<4|uint16(src[i+1]>>4),
			uint16(src[i+1]&0xF)<<8|uint16(src[i+2]))
	}
	return words
}
