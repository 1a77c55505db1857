package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"

	"credit2cash/internal/config"
	"credit2cash/internal/domain"
	"credit2cash/internal/gateway"
	"credit2cash/internal/onboarding"
	"credit2cash/internal/usecase"
	"credit2cash/internal/validation"
)

const usage = `usage: credit2cash <command> [flags]

onboarding:
  state                          show where the device resumes
  send-otp -phone N              send (or resend) the login OTP
  verify-otp -phone N -code C    verify the login OTP
  user-type -type salaried|business
  identity -type pan|gst -number X
  kyc-send -aadhaar N            send the Aadhaar OTP
  kyc-verify -code C             verify the Aadhaar OTP
  logout                         end the session, keep onboarding progress
  reset                          forget everything on this device

dashboard:
  add-card -number N -bank B -expiry MM/YY [-limit L]
  add-account -number N -bank B -ifsc I [-balance B]
  cards | accounts | summary
  transactions [-status success|pending|failed]
  transfer -card ID -account ID -amount A
  statement [-out FILE]
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// --- Dependency Injection (Wiring the application) ---
	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer closeStore()

	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(os.Stderr, "credit2cash ", log.LstdFlags|log.Lmicroseconds)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed, err = newSeed()
		if err != nil {
			log.Fatalf("Error seeding sampler: %v", err)
		}
	}

	cli := &app{
		onboarding: usecase.NewOnboardingUseCase(usecase.NewSessionStore(kv), cfg.Onboarding(), usecase.WithLogger(logger)),
		ledger:     usecase.NewLedger(kv, gateway.NewCSVStatementWriter(), usecase.WithLogger(logger), usecase.WithCardLimit(cfg.CardLimit)),
	}
	cli.transfers = usecase.NewTransferEngine(cli.ledger, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), usecase.WithLogger(logger))

	// --- Execute the command ---
	out, err := cli.run(ctx, os.Args[1], os.Args[2:])
	if err != nil {
		closeStore()
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
	if out == nil {
		return
	}

	// --- Present the Output ---
	output, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(output))
}

var dashboardCommands = map[string]bool{
	"add-card": true, "add-account": true, "cards": true, "accounts": true,
	"transactions": true, "summary": true, "transfer": true, "statement": true,
}

type app struct {
	onboarding *usecase.OnboardingUseCase
	ledger     *usecase.Ledger
	transfers  *usecase.TransferEngine
}

type stateView struct {
	State           string          `json:"state"`
	Phone           string          `json:"phone,omitempty"`
	Profile         *domain.Profile `json:"profile,omitempty"`
	ResendAvailable string          `json:"resendAvailableAt,omitempty"`
}

type summaryView struct {
	domain.Summary
	AvailableCreditINR string `json:"availableCreditInr"`
	TransferredINR     string `json:"transferredInr"`
}

func (a *app) run(ctx context.Context, cmd string, args []string) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	switch cmd {
	case "state":
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		s, err := a.onboarding.Resume(ctx)
		if err != nil {
			return nil, err
		}
		return a.view(ctx, s)

	case "send-otp":
		phone := fs.String("phone", "", "10-digit mobile number (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.SendOTP(ctx, validation.StripDigits(*phone)))

	case "verify-otp":
		phone := fs.String("phone", "", "10-digit mobile number (required)")
		code := fs.String("code", "", "6-digit OTP (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.VerifyOTP(ctx, validation.StripDigits(*phone), *code))

	case "user-type":
		kind := fs.String("type", "", "salaried or business (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		ut, err := domain.ParseUserType(*kind)
		if err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.ChooseUserType(ctx, ut))

	case "identity":
		kind := fs.String("type", "", "pan or gst (required)")
		number := fs.String("number", "", "PAN or GST number (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		it, err := domain.ParseIdentityType(*kind)
		if err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.SubmitIdentity(ctx, it, *number))

	case "kyc-send":
		aadhaar := fs.String("aadhaar", "", "12-digit Aadhaar number (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.SendAadhaarOTP(ctx, *aadhaar))

	case "kyc-verify":
		code := fs.String("code", "", "6-digit OTP (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return a.step(ctx)(a.onboarding.VerifyAadhaarOTP(ctx, *code))

	case "logout":
		return a.step(ctx)(a.onboarding.Logout(ctx))

	case "reset":
		return a.step(ctx)(a.onboarding.Reset(ctx))
	}

	if !dashboardCommands[cmd] {
		return nil, fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	if err := a.requireDashboard(ctx); err != nil {
		return nil, err
	}

	switch cmd {
	case "add-card":
		number := fs.String("number", "", "card number (required)")
		bank := fs.String("bank", "", "issuing bank (required)")
		expiry := fs.String("expiry", "", "expiry date MM/YY (required)")
		limit := fs.String("limit", "", "available limit, defaults to the configured card limit")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		in := domain.NewCard{CardNumber: *number, BankName: *bank, ExpiryDate: *expiry}
		if *limit != "" {
			d, err := parseAmount("limit", *limit)
			if err != nil {
				return nil, err
			}
			in.AvailableLimit = d
		}
		return a.ledger.AddCard(ctx, in)

	case "add-account":
		number := fs.String("number", "", "account number (required)")
		bank := fs.String("bank", "", "bank name (required)")
		ifsc := fs.String("ifsc", "", "IFSC code (required)")
		balance := fs.String("balance", "0", "current balance")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		d, err := parseAmount("balance", *balance)
		if err != nil {
			return nil, err
		}
		return a.ledger.AddAccount(ctx, domain.NewAccount{AccountNumber: *number, BankName: *bank, IFSC: *ifsc, Balance: d})

	case "cards":
		return a.ledger.ListCards(ctx)

	case "accounts":
		return a.ledger.ListAccounts(ctx)

	case "transactions":
		status := fs.String("status", "", "only show success, pending or failed")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		var filter *domain.TransactionStatus
		if *status != "" {
			st, err := domain.ParseTransactionStatus(*status)
			if err != nil {
				return nil, err
			}
			filter = &st
		}
		return a.ledger.ListTransactions(ctx, filter)

	case "summary":
		s, err := a.ledger.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return summaryView{
			Summary:            s,
			AvailableCreditINR: gateway.FormatINR(s.AvailableCredit),
			TransferredINR:     gateway.FormatINR(s.Transferred),
		}, nil

	case "transfer":
		card := fs.String("card", "", "credit card id (required)")
		account := fs.String("account", "", "savings account id (required)")
		amount := fs.String("amount", "", "amount in rupees (required)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		d, err := parseAmount("amount", *amount)
		if err != nil {
			return nil, err
		}
		return a.transfers.Transfer(ctx, *card, *account, d)

	case "statement":
		path := fs.String("out", "", "write the CSV statement to this file instead of stdout")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		w := io.Writer(os.Stdout)
		if *path != "" {
			f, err := os.Create(*path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			w = f
		}
		return nil, a.ledger.ExportStatement(ctx, w)
	}

	return nil, fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

// step turns an onboarding result into the state view printed to the user.
func (a *app) step(ctx context.Context) func(onboarding.State, error) (any, error) {
	return func(s onboarding.State, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return a.view(ctx, s)
	}
}

func (a *app) view(ctx context.Context, s onboarding.State) (any, error) {
	v := stateView{State: s.String()}
	if sess, ok, err := a.onboarding.Session(ctx); err != nil {
		return nil, err
	} else if ok {
		v.Phone = validation.FormatPhone(sess.Phone)
	}
	if s != onboarding.LoggedOut {
		p, err := a.onboarding.Profile(ctx)
		if err != nil {
			return nil, err
		}
		if p.AadhaarNumber != "" {
			p.AadhaarNumber = validation.MaskLast4(p.AadhaarNumber)
		}
		v.Profile = &p
	}
	if s == onboarding.AwaitingOTP {
		at, ok, err := a.onboarding.ResendAvailableAt(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			v.ResendAvailable = at.Format("15:04:05")
		}
	}
	return v, nil
}

func (a *app) requireDashboard(ctx context.Context) error {
	s, err := a.onboarding.Enter(ctx, onboarding.Dashboard)
	if err != nil {
		return err
	}
	if s != onboarding.Dashboard {
		return &domain.StepLockedError{Want: onboarding.Dashboard.String(), Redirect: s.String()}
	}
	return nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Decimal{}, &domain.ValidationError{Field: field, Message: "must be a number"}
	}
	return d, nil
}

func openStore(cfg config.Config) (usecase.KeyValueStore, func(), error) {
	if cfg.Store == config.StoreMemory {
		return gateway.NewMemoryStore(), func() {}, nil
	}
	store, err := gateway.OpenSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
