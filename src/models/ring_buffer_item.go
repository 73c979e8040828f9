package models

// RingBuffer indices and constants
const (
	RB_IDX_EPOCH    = 0
	RB_IDX_PRICE    = 1
	RB_IDX_DIGIT    = 2
	RB_NUM_FEATURES = 3
)
