// Command pos is a terminal front end for the store manager API: sign
// in, pick the active store, manage products and customers, compose a
// cart and submit sales.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/cart"
	"github.com/FabricioIaronka/store-manager/internal/catalog"
	"github.com/FabricioIaronka/store-manager/internal/checkout"
	"github.com/FabricioIaronka/store-manager/internal/config"
	"github.com/FabricioIaronka/store-manager/internal/rest"
	"github.com/FabricioIaronka/store-manager/internal/session"
	"github.com/FabricioIaronka/store-manager/internal/state"
)

type app struct {
	session  *session.Session
	catalog  *catalog.Catalog
	checkout *checkout.Checkout
	out      *bufio.Writer
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	api, err := rest.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("invalid API configuration: %v", err)
	}

	st := state.NewFile(cfg.StatePath)
	sess := session.New(api, st)
	api.SetStoreIDSource(sess.ActiveStoreID)
	api.OnSessionExpired(func() {
		sess.ExpireLocally()
		fmt.Println("session expired, please sign in again")
	})

	cat := catalog.New(api)
	a := &app{
		session:  sess,
		catalog:  cat,
		checkout: checkout.New(sess, cat, cart.New()),
		out:      bufio.NewWriter(os.Stdout),
	}

	ctx := context.Background()
	sess.Init(ctx)
	if u := sess.User(); u != nil {
		fmt.Printf("welcome back, %s (store %s)\n", u.Name, sess.ActiveStoreID())
	} else {
		fmt.Println("not signed in; use: login <email> <password>")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("pos> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			break
		}
		if err := a.dispatch(ctx, args); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		a.out.Flush()
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		a.printHelp()
	case "login":
		if len(args) != 3 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		user, err := a.session.SignIn(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		if !user.HasStores() {
			fmt.Fprintln(a.out, "no store yet; create one with: store <name> <cnpj>")
		} else {
			fmt.Fprintf(a.out, "signed in as %s, active store %s\n", user.Name, a.session.ActiveStoreID())
		}
	case "register":
		if len(args) != 6 {
			return fmt.Errorf("usage: register <name> <email> <password> <store-name> <cnpj>")
		}
		user, err := a.session.Register(ctx,
			session.RegisterInput{Name: args[1], Email: args[2], Password: args[3], ConfirmPassword: args[3]},
			session.StoreInput{Name: args[4], CNPJ: args[5]})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "account created for %s, active store %s\n", user.Name, a.session.ActiveStoreID())
	case "logout":
		a.session.SignOut(ctx)
		fmt.Fprintln(a.out, "signed out")
	case "store":
		if len(args) != 3 {
			return fmt.Errorf("usage: store <name> <cnpj>")
		}
		if err := a.session.CreateStore(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "store created, active store %s\n", a.session.ActiveStoreID())
	case "stores":
		user := a.session.User()
		if user == nil {
			return rest.ErrNotAuthenticated
		}
		active := a.session.ActiveStoreID()
		for _, s := range user.Stores {
			marker := " "
			if strconv.FormatInt(s.ID, 10) == active {
				marker = "*"
			}
			fmt.Fprintf(a.out, "%s %d  %s  %s\n", marker, s.ID, s.Name, s.CNPJ)
		}
	case "use":
		if len(args) != 2 {
			return fmt.Errorf("usage: use <store-id>")
		}
		return a.session.SelectStore(args[1])
	case "products":
		products, err := a.catalog.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Fprintf(a.out, "%d  %-24s stock %-5d R$ %.2f\n", p.ID, p.Name, p.Qnt, p.Price)
		}
	case "clients":
		clients, err := a.catalog.Clients(ctx)
		if err != nil {
			return err
		}
		for _, c := range clients {
			fmt.Fprintf(a.out, "%d  %s %s  cpf %s\n", c.ID, c.Name, c.Surname, c.CPF)
		}
	case "cart":
		return a.cartCommand(ctx, args[1:])
	case "customer":
		if len(args) != 2 {
			return fmt.Errorf("usage: customer <cpf>|none")
		}
		if args[1] == "none" {
			a.checkout.ClearClient()
			fmt.Fprintln(a.out, "selling to anonymous customer")
			return nil
		}
		client, err := a.checkout.SelectClientByCPF(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "customer: %s %s\n", client.Name, client.Surname)
	case "sell":
		if len(args) != 2 {
			return fmt.Errorf("usage: sell <MONEY|DEBIT|CREDIT|PIX|OTHER>")
		}
		fmt.Fprintln(a.out, "submitting...")
		a.out.Flush()
		if err := a.checkout.Submit(ctx, domain.PaymentType(strings.ToUpper(args[1]))); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "sale completed")
	case "sales":
		sales, err := a.catalog.Sales(ctx)
		if err != nil {
			return err
		}
		for _, s := range sales {
			fmt.Fprintf(a.out, "%d  %s  %-6s R$ %.2f  (%d items)\n", s.ID, s.CreatedAt, s.PaymentType, s.TotalValue, len(s.Items))
		}
	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return nil
}

func (a *app) cartCommand(ctx context.Context, args []string) error {
	crt := a.checkout.Cart()
	if len(args) == 0 || args[0] == "show" {
		if crt.IsEmpty() {
			fmt.Fprintln(a.out, "cart is empty")
			return nil
		}
		for i, line := range crt.Lines() {
			fmt.Fprintf(a.out, "%d  %-24s x%-4d R$ %.2f\n", i, line.Product.Name, line.Quantity, line.Subtotal())
		}
		if c := a.checkout.SelectedClient(); c != nil {
			fmt.Fprintf(a.out, "customer: %s %s\n", c.Name, c.Surname)
		}
		fmt.Fprintf(a.out, "total: R$ %.2f\n", crt.Total())
		return nil
	}
	switch args[0] {
	case "add":
		if len(args) != 3 {
			return fmt.Errorf("usage: cart add <product-id> <qty>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		products, err := a.catalog.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.ID == id {
				return crt.Add(p, qty)
			}
		}
		return fmt.Errorf("no product with id %d", id)
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart rm <line-index>")
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid line index %q", args[1])
		}
		return crt.Remove(idx)
	case "clear":
		crt.Clear()
		return nil
	}
	return fmt.Errorf("unknown cart command %q", args[0])
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  login <email> <password>       sign in
  register <name> <email> <password> <store-name> <cnpj>
  logout                         sign out
  store <name> <cnpj>            create a store
  stores                         list your stores (* = active)
  use <store-id>                 switch the active store
  products                       list products
  clients                        list customers
  customer <cpf>|none            attach/detach a customer
  cart [show]                    show the cart
  cart add <product-id> <qty>    add to the cart
  cart rm <line-index>           remove a cart line
  cart clear                     abandon the cart
  sell <payment-type>            submit the sale
  sales                          sales history
  exit
`)
}
