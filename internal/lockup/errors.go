package lockup

import "errors"

// Kind discriminates the failures that get their own alert panel.
type Kind int

const (
	KindSystem Kind = iota
	KindWalletMissing
	KindWalletLocked
	KindContractLoad
)

func (k Kind) String() string {
	switch k {
	case KindWalletMissing:
		return "wallet-missing"
	case KindWalletLocked:
		return "wallet-locked"
	case KindContractLoad:
		return "contract-load"
	default:
		return "system"
	}
}

// AppError is a failure tagged with the panel that should report it.
type AppError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the tag carried by err, or KindSystem.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindSystem
}

// Panel is the alert shown for a failed session.
type Panel struct {
	Kind   Kind
	Title  string
	Body   string
	Detail string
}

// PanelFor maps an error to its alert panel.
func PanelFor(err error) Panel {
	p := Panel{Kind: KindOf(err)}
	if err != nil {
		p.Detail = err.Error()
	}
	switch p.Kind {
	case KindWalletMissing:
		p.Title = "No wallet"
		p.Body = "No wallet is configured. Add one with `mdtlockup wallet add`."
	case KindWalletLocked:
		p.Title = "Wallet locked"
		p.Body = "Account not found or its key is unavailable. Unlock it with `mdtlockup wallet unlock`."
	case KindContractLoad:
		p.Title = "Contract error"
		p.Body = "Failed loading the token or lockup contract. Check the network and contract addresses."
	default:
		p.Title = "System error"
		p.Body = "Something went wrong. Please try again later."
	}
	return p
}
