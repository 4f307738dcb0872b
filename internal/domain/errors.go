package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidWindow = errors.New("window start must not be after window end")
)

// validationErrors lists every error a Validate method can return
var validationErrors = []error{
	ErrInvalidInput,
	ErrInvalidWindow,
	ErrAmountAndBandSet,
	ErrAmountOrBandRequired,
	ErrAmountInvalid,
	ErrBandInvalid,
	ErrCurrencyRequired,
	ErrCategoryRequired,
	ErrConfidenceInvalid,
	ErrRecurrenceTypeInvalid,
	ErrDayRuleInvalid,
	ErrAnchorDayInvalid,
	ErrIncomeSourceRequired,
	ErrIncomeSourceTooLong,
	ErrExpenseKindInvalid,
	ErrExpenseCardRequired,
	ErrExpenseCardForbidden,
	ErrInstallmentsInvalid,
	ErrInstallmentsForbidden,
	ErrExpenseDateRequired,
	ErrExpenseCardNotCredit,
	ErrNotCreditExpense,
	ErrInstallmentNumberInvalid,
	ErrCardNameEmpty,
	ErrCardNameTooLong,
	ErrCardTypeInvalid,
	ErrCardDayInvalid,
	ErrCardCurrencyMissing,
	ErrCardCurrencyUnsupported,
	ErrAccountNameEmpty,
	ErrAccountNameTooLong,
	ErrAccountTypeInvalid,
	ErrLiquidityTierInvalid,
	ErrAccountCurrencyMissing,
	ErrAccountBalanceInvalid,
	ErrSavingGoalNameEmpty,
	ErrSavingGoalNameTooLong,
	ErrSavingGoalTargetInvalid,
	ErrSavingGoalCurrentInvalid,
	ErrPriorityInvalid,
	ErrContributionInvalid,
	ErrSurplusInvalid,
}

// IsValidationError reports whether err is a data-entry validation failure
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrPlannedIncomeNotFound,
		ErrPlannedExpenseNotFound,
		ErrCardNotFound,
		ErrSavingGoalNotFound,
		ErrAccountNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict reports whether err means the request clashes with stored state
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrCardNameTaken) ||
		errors.Is(err, ErrCardInUse) ||
		errors.Is(err, ErrAccountNameTaken) ||
		errors.Is(err, ErrInstallmentAlreadyPaid)
}
