// Command calculator is an example rpcserve server exercising all three
// registration tiers, relayed application errors, Basic-Auth credentials and
// session tickets.
//
// Try it:
//
//	curl -u admin:swordfish -d '{"jsonrpc":"2.0","method":"sum","params":[2,3],"id":1}' localhost:8080/rpc
//	curl -u admin:swordfish -d '{"jsonrpc":"2.0","method":"calc.divide","params":{"dividend":10,"divisor":4},"id":2}' localhost:8080/rpc
//	curl -u admin:swordfish -d '{"jsonrpc":"2.0","method":"Now","id":3}' localhost:8080/rpc
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mnehpets/rpcserve/auth"
	"github.com/mnehpets/rpcserve/config"
	"github.com/mnehpets/rpcserve/httprpc"
	"github.com/mnehpets/rpcserve/jsonrpc"
)

// ErrDivisionByZero is relayed to clients with its own application code.
var ErrDivisionByZero = jsonrpc.NewError(1001, "division by zero")

type SumParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Calculator is exposed through the binding tier as "calc.divide".
type Calculator struct{}

type DivideParams struct {
	Dividend  float64 `json:"dividend"`
	Divisor   float64 `json:"divisor"`
	Precision int     `json:"precision" default:"2"`
}

func (Calculator) Divide(ctx context.Context, p DivideParams) (float64, error) {
	if p.Divisor == 0 {
		return 0, ErrDivisionByZero
	}
	shift := 1.0
	for i := 0; i < p.Precision; i++ {
		shift *= 10
	}
	return float64(int64(p.Dividend/p.Divisor*shift)) / shift, nil
}

// Clock is attached for implicit resolution: its method name is the RPC
// method name.
type Clock struct{}

func (Clock) Now(ctx context.Context, p struct{}) (string, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

// Session issues tickets so clients can drop Basic credentials after the
// first authenticated call.
type Session struct {
	tickets *auth.TicketCodec
}

func (s *Session) Login(ctx context.Context, p struct{}) (string, error) {
	creds, ok := jsonrpc.CredentialsFromContext(ctx)
	if !ok || creds.Username == "" {
		return "", jsonrpc.ErrUnauthorized
	}
	return s.tickets.Issue(creds.Username)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	store := auth.NewUserStore()
	if err := store.Add("admin", "swordfish"); err != nil {
		log.Fatal(err)
	}

	d := jsonrpc.NewDispatcher()
	d.RegisterFunc("sum", func(ctx context.Context, p SumParams) (float64, error) {
		return p.A + p.B, nil
	})
	d.Bind("calc.divide", Calculator{}, "Divide")
	d.Attach(Clock{})
	d.Relay(ErrDivisionByZero)
	d.Before(auth.Hook(store, nil))

	handler := httprpc.NewHandler(d)
	handler.Realm = cfg.Realm
	handler.RequireAuth = cfg.RequireAuth

	if cfg.TicketKey != nil {
		tickets, err := auth.NewTicketCodec(cfg.TicketKeyID, map[string][]byte{cfg.TicketKeyID: cfg.TicketKey})
		if err != nil {
			log.Fatal(err)
		}
		tickets.TTL = cfg.TicketTTL
		d.Bind("session.login", &Session{tickets: tickets}, "Login")
		handler.Source = httprpc.ChainSources(&auth.TicketSource{Codec: tickets}, auth.Basic{})
	} else {
		handler.Source = auth.Basic{}
	}

	http.Handle(cfg.Route, handler)

	log.Printf("Starting server on %s at %s", cfg.Addr, cfg.Route)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
