package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/tavola-client/internal/api"
	"github.com/xenking/tavola-client/internal/cart"
	"github.com/xenking/tavola-client/internal/history"
	"github.com/xenking/tavola-client/internal/menu"
	"github.com/xenking/tavola-client/internal/order"
	"github.com/xenking/tavola-client/internal/session"
	"github.com/xenking/tavola-client/pkg/probe"
)

// repl is the view controller: it reads commands, selects between the
// unauthenticated (login/register) and authenticated (menu/orders) command
// sets based on the session store, and renders results.
type repl struct {
	store    *session.Store
	gateway  *api.Client
	cart     *cart.Cart
	workflow *order.Workflow
	monitor  *probe.Monitor
	out      io.Writer
	lg       *zap.Logger

	// menu snapshot so `add` can capture item details without refetching.
	items     []menu.Item
	itemsByID map[int64]menu.Item
}

func newREPL(
	store *session.Store,
	gateway *api.Client,
	c *cart.Cart,
	workflow *order.Workflow,
	monitor *probe.Monitor,
	out io.Writer,
	lg *zap.Logger,
) *repl {
	return &repl{
		store:     store,
		gateway:   gateway,
		cart:      c,
		workflow:  workflow,
		monitor:   monitor,
		out:       out,
		lg:        lg,
		itemsByID: make(map[int64]menu.Item),
	}
}

// run processes commands until the input channel closes, the user quits, or
// the context is cancelled.
func (r *repl) run(ctx context.Context, lines <-chan string) error {
	r.printWelcome()
	r.printPrompt()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := r.dispatch(ctx, lines, line); quit {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
			r.printPrompt()
		}
	}
}

// dispatch executes one command line. It returns true when the user quits.
func (r *repl) dispatch(ctx context.Context, lines <-chan string, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		r.printHelp()
		return false
	case "status":
		r.cmdStatus()
		return false
	}

	if !r.store.Authenticated() {
		switch cmd {
		case "login":
			r.cmdLogin(ctx, lines)
		case "register":
			r.cmdRegister(ctx, lines)
		default:
			fmt.Fprintln(r.out, "Please log in first. Commands: login, register, status, help, quit")
		}
		return false
	}

	switch cmd {
	case "login":
		fmt.Fprintln(r.out, "Already logged in. Use logout first.")
	case "register":
		fmt.Fprintln(r.out, "Already logged in. Use logout first.")
	case "logout":
		r.store.Logout()
		r.cart.Clear()
		fmt.Fprintln(r.out, "Logged out.")
	case "whoami":
		r.cmdWhoami()
	case "menu":
		r.cmdMenu(ctx, args)
	case "add":
		r.cmdAdd(args)
	case "cart":
		r.cmdCart()
	case "qty":
		r.cmdQty(args)
	case "remove":
		r.cmdRemove(args)
	case "checkout":
		r.cmdCheckout(ctx, lines)
	case "orders":
		r.cmdOrders(ctx)
	default:
		fmt.Fprintf(r.out, "Unknown command %q. Try help.\n", cmd)
	}
	return false
}

func (r *repl) printWelcome() {
	fmt.Fprintln(r.out, "tavola: restaurant ordering client")
	if id := r.store.Identity(); id != nil {
		fmt.Fprintf(r.out, "Welcome back, %s!\n", displayName(id))
	} else {
		fmt.Fprintln(r.out, "Not logged in. Use login or register.")
	}
}

func (r *repl) printPrompt() {
	fmt.Fprint(r.out, "> ")
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, `Commands:
  login                log in with email or phone
  register             create an account
  logout               end the session
  whoami               show the current identity
  menu [category]      list menu items
  add <item-id>        add a menu item to the cart
  cart                 show the cart
  qty <item-id> <n>    set an item's quantity (0 removes)
  remove <item-id>     remove an item from the cart
  checkout             place the order
  orders               list your past orders
  status               backend connectivity
  quit                 exit`)
}

// prompt prints a label and waits for the next input line.
func (r *repl) prompt(ctx context.Context, lines <-chan string, label string) (string, bool) {
	fmt.Fprintf(r.out, "%s: ", label)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func (r *repl) cmdLogin(ctx context.Context, lines <-chan string) {
	email, ok := r.prompt(ctx, lines, "email (leave blank to log in by phone)")
	if !ok {
		return
	}
	creds := session.Credentials{Email: email}
	if email == "" {
		phone, ok := r.prompt(ctx, lines, "phone")
		if !ok {
			return
		}
		creds.Phone = phone
	}
	password, ok := r.prompt(ctx, lines, "password")
	if !ok {
		return
	}
	creds.Password = password

	if err := r.store.Login(ctx, creds); err != nil {
		fmt.Fprintf(r.out, "Login failed: %s\n", err)
		return
	}
	fmt.Fprintf(r.out, "Welcome, %s!\n", displayName(r.store.Identity()))
	// New session, fresh draft.
	r.workflow.Draft().Reset(r.store.Identity())
}

func (r *repl) cmdRegister(ctx context.Context, lines <-chan string) {
	var reg session.Registration
	var ok bool
	if reg.Email, ok = r.prompt(ctx, lines, "email"); !ok {
		return
	}
	if reg.Password, ok = r.prompt(ctx, lines, "password"); !ok {
		return
	}
	if reg.FullName, ok = r.prompt(ctx, lines, "full name"); !ok {
		return
	}
	if reg.Phone, ok = r.prompt(ctx, lines, "phone"); !ok {
		return
	}

	if err := r.store.Register(ctx, reg); err != nil {
		fmt.Fprintf(r.out, "Registration failed: %s\n", err)
		return
	}
	fmt.Fprintln(r.out, "Account created. You can log in now.")
}

func (r *repl) cmdWhoami() {
	id := r.store.Identity()
	fmt.Fprintf(r.out, "%s <%s> phone=%s role=%s\n", displayName(id), id.Email, id.Phone, id.Role)
}

func (r *repl) cmdMenu(ctx context.Context, args []string) {
	items, err := menu.Fetch(ctx, r.gateway)
	if err != nil {
		r.printAPIError(err)
		return
	}
	r.items = items
	r.itemsByID = make(map[int64]menu.Item, len(items))
	for _, item := range items {
		r.itemsByID[item.ID] = item
	}

	category := ""
	if len(args) > 0 {
		category = args[0]
	}
	shown := menu.FilterByCategory(items, category)
	if len(shown) == 0 {
		fmt.Fprintln(r.out, "No items found.")
		return
	}

	fmt.Fprintf(r.out, "Categories: %s\n", strings.Join(menu.Categories(items), ", "))
	for _, item := range shown {
		marker := ""
		if !item.Available {
			marker = "  (unavailable)"
		}
		fmt.Fprintf(r.out, "  [%d] %-24s $%s  %s%s\n", item.ID, item.Name, item.Price.StringFixed(2), item.Category, marker)
	}
}

func (r *repl) cmdAdd(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: add <item-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Usage: add <item-id>")
		return
	}

	item, ok := r.itemsByID[id]
	if !ok {
		fmt.Fprintln(r.out, "Unknown item. Run menu first to load the catalog.")
		return
	}
	// Availability policy lives here, not in the cart.
	if !item.Available {
		fmt.Fprintf(r.out, "%s is currently unavailable.\n", item.Name)
		return
	}

	r.cart.Add(item)
	fmt.Fprintf(r.out, "Added %s. Cart: %d items, $%s\n", item.Name, r.cart.ItemCount(), r.cart.Total().StringFixed(2))
}

func (r *repl) cmdCart() {
	if r.cart.Empty() {
		fmt.Fprintln(r.out, "Your cart is empty. Add some items from the menu!")
		return
	}
	for _, line := range r.cart.Lines() {
		fmt.Fprintf(r.out, "  [%d] %-24s x%d  $%s\n", line.Item.ID, line.Item.Name, line.Quantity, line.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(r.out, "Total: $%s (%d items)\n", r.cart.Total().StringFixed(2), r.cart.ItemCount())
}

func (r *repl) cmdQty(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(r.out, "Usage: qty <item-id> <quantity>")
		return
	}
	id, err1 := strconv.ParseInt(args[0], 10, 64)
	qty, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(r.out, "Usage: qty <item-id> <quantity>")
		return
	}

	if err := r.cart.UpdateQuantity(id, qty); err != nil {
		fmt.Fprintf(r.out, "%s\n", err)
		return
	}
	fmt.Fprintf(r.out, "Cart: %d items, $%s\n", r.cart.ItemCount(), r.cart.Total().StringFixed(2))
}

func (r *repl) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: remove <item-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Usage: remove <item-id>")
		return
	}
	// Removal through quantity zero, same as the quantity controls.
	if err := r.cart.UpdateQuantity(id, 0); err != nil {
		fmt.Fprintf(r.out, "%s\n", err)
		return
	}
	fmt.Fprintf(r.out, "Cart: %d items, $%s\n", r.cart.ItemCount(), r.cart.Total().StringFixed(2))
}

func (r *repl) cmdCheckout(ctx context.Context, lines <-chan string) {
	if r.cart.Empty() {
		fmt.Fprintln(r.out, "Your cart is empty. Add some items from the menu!")
		return
	}

	draft := r.workflow.Draft()
	draft.Prefill(r.store.Identity())

	if v, ok := r.promptDefault(ctx, lines, "name", draft.CustomerName); ok {
		draft.CustomerName = v
	} else {
		return
	}
	if v, ok := r.promptDefault(ctx, lines, "phone", draft.CustomerPhone); ok {
		draft.CustomerPhone = v
	} else {
		return
	}
	if v, ok := r.prompt(ctx, lines, "delivery address (blank for pickup)"); ok {
		draft.DeliveryAddress = v
	} else {
		return
	}
	if v, ok := r.prompt(ctx, lines, "special instructions (optional)"); ok {
		draft.SpecialInstructions = v
	} else {
		return
	}

	fmt.Fprintf(r.out, "Placing order: %d items, $%s...\n", r.cart.ItemCount(), r.cart.Total().StringFixed(2))

	created, err := r.workflow.Submit(ctx)
	if err != nil {
		r.printAPIError(err)
		return
	}

	fmt.Fprintf(r.out, "Order #%d placed! Status: %s\n", created.ID, created.FormatStatus())
	// Mirror the web flow: after a successful order, switch to the history view.
	r.cmdOrders(ctx)
}

// promptDefault asks for a value, keeping def when the user enters nothing.
func (r *repl) promptDefault(ctx context.Context, lines <-chan string, label, def string) (string, bool) {
	text := label
	if def != "" {
		text = fmt.Sprintf("%s [%s]", label, def)
	}
	v, ok := r.prompt(ctx, lines, text)
	if !ok {
		return "", false
	}
	if v == "" {
		return def, true
	}
	return v, true
}

func (r *repl) cmdOrders(ctx context.Context) {
	records, err := history.FetchMine(ctx, r.gateway)
	if err != nil {
		r.printAPIError(err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No orders yet. When you place orders, they will appear here.")
		return
	}

	for _, rec := range records {
		fmt.Fprintf(r.out, "Order #%d  %s  %s  $%s\n",
			rec.ID, rec.FormatStatus(), rec.FormatDate(), rec.TotalAmount.StringFixed(2))
		for _, item := range rec.Items {
			fmt.Fprintf(r.out, "  %dx %-24s $%s\n", item.Quantity, item.MenuItemName, item.LineTotal().StringFixed(2))
		}
		if rec.DeliveryAddress != "" {
			fmt.Fprintf(r.out, "  Delivery to: %s\n", rec.DeliveryAddress)
		}
		if rec.SpecialInstructions != "" {
			fmt.Fprintf(r.out, "  Instructions: %s\n", rec.SpecialInstructions)
		}
	}
}

func (r *repl) cmdStatus() {
	if r.monitor.Online() {
		fmt.Fprintln(r.out, "Backend: online")
		return
	}
	fmt.Fprintln(r.out, "Backend: offline")
	if err := r.monitor.LastError(); err != nil {
		fmt.Fprintf(r.out, "  last error: %s\n", err)
	}
}

// printAPIError renders any workflow or gateway error inline. A forced
// logout (expired session) additionally drops the user back to the
// unauthenticated view.
func (r *repl) printAPIError(err error) {
	fmt.Fprintf(r.out, "%s\n", err)
	if !r.store.Authenticated() && r.gatewayExpired(err) {
		fmt.Fprintln(r.out, "You have been logged out.")
	}
}

func (r *repl) gatewayExpired(err error) bool {
	return errors.Is(err, api.ErrSessionExpired)
}

func displayName(id *session.Identity) string {
	if id == nil {
		return ""
	}
	if id.FullName != "" {
		return id.FullName
	}
	return id.Email
}
