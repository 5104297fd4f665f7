package models

import (
	"strings"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

type TransferStatus string

const (
	StatusCreated            TransferStatus = "CREATED"
	StatusComplianceCheck    TransferStatus = "COMPLIANCE_CHECK"
	StatusComplianceHold     TransferStatus = "COMPLIANCE_HOLD"
	StatusPaymentPending     TransferStatus = "PAYMENT_PENDING"
	StatusPaymentCaptured    TransferStatus = "PAYMENT_CAPTURED"
	StatusPayoutPending      TransferStatus = "PAYOUT_PENDING"
	StatusDelivering         TransferStatus = "DELIVERING"
	StatusCompleted          TransferStatus = "COMPLETED"
	StatusPaymentFailed      TransferStatus = "PAYMENT_FAILED"
	StatusComplianceRejected TransferStatus = "COMPLIANCE_REJECTED"
	StatusCancelled          TransferStatus = "CANCELLED"
	StatusRefundPending      TransferStatus = "REFUND_PENDING"
	StatusRefunded           TransferStatus = "REFUNDED"
	StatusFailed             TransferStatus = "FAILED"
)

var AllTransferStatuses = []TransferStatus{
	StatusCreated,
	StatusComplianceCheck,
	StatusComplianceHold,
	StatusPaymentPending,
	StatusPaymentCaptured,
	StatusPayoutPending,
	StatusDelivering,
	StatusCompleted,
	StatusPaymentFailed,
	StatusComplianceRejected,
	StatusCancelled,
	StatusRefundPending,
	StatusRefunded,
	StatusFailed,
}

// transitions has an entry for every status; terminal ones map to nothing.
var transitions = map[TransferStatus][]TransferStatus{
	StatusCreated:            {StatusComplianceCheck, StatusCancelled},
	StatusComplianceCheck:    {StatusComplianceHold, StatusPaymentPending, StatusComplianceRejected},
	StatusComplianceHold:     {StatusPaymentPending, StatusComplianceRejected},
	StatusPaymentPending:     {StatusPaymentCaptured, StatusPaymentFailed},
	StatusPaymentCaptured:    {StatusPayoutPending},
	StatusPayoutPending:      {StatusDelivering, StatusFailed},
	StatusDelivering:         {StatusCompleted, StatusFailed},
	StatusFailed:             {StatusRefundPending},
	StatusRefundPending:      {StatusRefunded},
	StatusCompleted:          {},
	StatusPaymentFailed:      {},
	StatusComplianceRejected: {},
	StatusCancelled:          {},
	StatusRefunded:           {},
}

var displayStatuses = map[TransferStatus]string{
	StatusComplianceCheck: "PROCESSING",
	StatusPaymentPending:  "PROCESSING",
	StatusPaymentCaptured: "PROCESSING",
	StatusPayoutPending:   "PROCESSING",
	StatusComplianceHold:  "UNDER_REVIEW",
	StatusDelivering:      "IN_TRANSIT",
	StatusRefundPending:   "REFUNDING",
}

func ParseTransferStatus(s string) (TransferStatus, error) {
	st := TransferStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", custom_err.NewValidationError("status", s, "unknown transfer status")
	}
	return st, nil
}

// AllowedTransitions returns a copy, callers may modify it.
func AllowedTransitions(s TransferStatus) []TransferStatus {
	targets := transitions[s]
	out := make([]TransferStatus, len(targets))
	copy(out, targets)
	return out
}

func CanTransitionTo(from, to TransferStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func IsTerminal(s TransferStatus) bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// DisplayStatus is the coarse status shown to senders.
func DisplayStatus(s TransferStatus) string {
	if d, ok := displayStatuses[s]; ok {
		return d
	}
	return string(s)
}

func (s TransferStatus) String() string {
	return string(s)
}

func statusNames(statuses []TransferStatus) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return names
}
