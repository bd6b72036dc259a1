package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// walletRegex matches base58-encoded Solana addresses.
var walletRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

func ValidateRegister(walletAddress, username, signature string) ValidationErrors {
	errs := make(ValidationErrors)

	validateWallet(walletAddress, errs)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	if signature == "" {
		errs.Add("signature", "Wallet signature is required")
	}

	return errs
}

func ValidateLogin(walletAddress, signature string) ValidationErrors {
	errs := make(ValidationErrors)

	validateWallet(walletAddress, errs)

	if signature == "" {
		errs.Add("signature", "Wallet signature is required")
	}

	return errs
}

func ValidatePayment(transactionHash string, amount float64, paymentType string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(transactionHash) == "" {
		errs.Add("transactionHash", "Transaction hash is required")
	}

	if amount <= 0 {
		errs.Add("amount", "Amount must be positive")
	}

	if paymentType != "initial" && paymentType != "monthly" {
		errs.Add("paymentType", "Payment type must be initial or monthly")
	}

	return errs
}

func validateWallet(walletAddress string, errs ValidationErrors) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		errs.Add("wallet_address", "Wallet address is required")
	} else if !walletRegex.MatchString(walletAddress) {
		errs.Add("wallet_address", "Invalid wallet address")
	}
}
