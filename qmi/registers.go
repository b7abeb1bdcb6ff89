package qmi

// Register bit layout of the modeled QMI block. Field positions follow the
// RP2350 datasheet so register dumps read the same as on silicon.

// DIRECT_CSR fields.
const (
	DirectCSREn         = 1 << 0
	DirectCSRBusy       = 1 << 1
	DirectCSRAssertCS0n = 1 << 2
	DirectCSRAssertCS1n = 1 << 3
	DirectCSRTxFull     = 1 << 10
	DirectCSRTxEmpty    = 1 << 11
	DirectCSRRxEmpty    = 1 << 16
	DirectCSRRxFull     = 1 << 17

	DirectCSRClkDivLSB  = 22
	DirectCSRClkDivMask = 0xFF << DirectCSRClkDivLSB
)

// DIRECT_TX fields.
const (
	DirectTxDataMask = 0xFFFF

	DirectTxIWidthLSB = 16
	DirectTxIWidthS   = 0 << DirectTxIWidthLSB
	DirectTxIWidthD   = 1 << DirectTxIWidthLSB
	DirectTxIWidthQ   = 2 << DirectTxIWidthLSB

	DirectTxDWidth = 1 << 18
	DirectTxOE     = 1 << 19
	DirectTxNoPush = 1 << 20
)

// M1_TIMING fields.
const (
	TimingClkDivLSB      = 0
	TimingRxDelayLSB     = 8
	TimingMinDeselectLSB = 12
	TimingMaxSelectLSB   = 17
	TimingSelectHoldLSB  = 23
	TimingPageBreakLSB   = 28
	TimingCooldownLSB    = 30

	TimingPageBreak1024 = 2
)

// M1_RFMT / M1_WFMT fields. The same layout serves both registers.
const (
	FmtPrefixWidthLSB = 0
	FmtAddrWidthLSB   = 2
	FmtSuffixWidthLSB = 4
	FmtDummyWidthLSB  = 6
	FmtDataWidthLSB   = 8
	FmtPrefixLenLSB   = 12
	FmtSuffixLenLSB   = 14
	FmtDummyLenLSB    = 16

	FmtWidthS = 0
	FmtWidthD = 1
	FmtWidthQ = 2

	FmtPrefixLenNone = 0
	FmtPrefixLen8    = 1
	FmtSuffixLenNone = 0
	FmtDummyLenNone  = 0
	FmtDummyLen24    = 6
)

// XIP_CTRL fields.
const (
	XIPCtrlWritableM1 = 1 << 3
)
