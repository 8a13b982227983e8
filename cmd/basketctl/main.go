// basketctl is a CLI tool for exercising the basket service.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	basketctl get -server URL
//	basketctl add -server URL -product ID [-qty N]
//	basketctl qty -server URL -item ID -qty N
//	basketctl remove -server URL -item ID
//	basketctl address -server URL -city C -zip Z ... [-billing]
//	basketctl methods -server URL
//	basketctl method -server URL -id <method-id>
//	basketctl override -server URL [-item ID] -type fixed-price -value 9.99 -reason PRICE_MATCH
//	basketctl coupon -server URL -code SAVE10 [-remove]
//	basketctl order -server URL
//	basketctl abandon -server URL -employee ID -passcode P
//
// Example flow:
//
//	basketctl add -server http://localhost:8080 -product 193457 -qty 2
//	basketctl address -server http://localhost:8080 -first Ada -last Lovelace -street "1 Main St" -city Basel -zip 4051 -country CH
//	basketctl method -server http://localhost:8080 -id 001
//	basketctl order -server http://localhost:8080
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "get":
		runGet(args)
	case "add":
		runAdd(args)
	case "qty":
		runQty(args)
	case "remove":
		runRemove(args)
	case "address":
		runAddress(args)
	case "methods":
		runMethods(args)
	case "method":
		runMethod(args)
	case "override":
		runOverride(args)
	case "coupon":
		runCoupon(args)
	case "order":
		runOrder(args)
	case "abandon":
		runAbandon(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `basketctl - basket service test tool

Usage:
  basketctl <command> [options]

Commands:
  get       Show the current basket
  add       Add a product line item
  qty       Change a line item's quantity (0 removes it)
  remove    Remove a line item
  address   Set the shipping (or -billing) address
  methods   List applicable shipping methods
  method    Select a shipping method
  override  Apply or clear a price override (-item for a line, omit for shipping)
  coupon    Apply a coupon code (-remove to take it off)
  order     Create the order from the basket
  abandon   Abandon the created order (manager credentials required)

Run 'basketctl <command> -h' for command-specific options.
`)
}

// serverFlag registers the shared -server flag on a command's flag set.
func serverFlag(fs *flag.FlagSet) *string {
	return fs.String("server", "http://localhost:8080", "basket service URL")
}

// === Commands ===

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	server := serverFlag(fs)
	fs.Parse(args)

	call(http.MethodGet, *server+"/basket", nil)
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	server := serverFlag(fs)
	product := fs.String("product", "", "product ID (required)")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	if *product == "" {
		fatal("add: -product is required")
	}
	call(http.MethodPost, *server+"/basket/items", map[string]any{
		"product_id": *product,
		"quantity":   *qty,
	})
}

func runQty(args []string) {
	fs := flag.NewFlagSet("qty", flag.ExitOnError)
	server := serverFlag(fs)
	item := fs.String("item", "", "line item ID (required)")
	qty := fs.Int("qty", -1, "new quantity (required, 0 removes)")
	fs.Parse(args)

	if *item == "" || *qty < 0 {
		fatal("qty: -item and -qty are required")
	}
	call(http.MethodPut, *server+"/basket/items/"+*item, map[string]any{"quantity": *qty})
}

func runRemove(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	server := serverFlag(fs)
	item := fs.String("item", "", "line item ID (required)")
	fs.Parse(args)

	if *item == "" {
		fatal("remove: -item is required")
	}
	call(http.MethodDelete, *server+"/basket/items/"+*item, nil)
}

func runAddress(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	server := serverFlag(fs)
	billing := fs.Bool("billing", false, "set the billing address instead of shipping")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	street := fs.String("street", "", "street address (required)")
	city := fs.String("city", "", "city (required)")
	state := fs.String("state", "", "state code")
	zip := fs.String("zip", "", "postal code (required)")
	country := fs.String("country", "US", "country code")
	phone := fs.String("phone", "", "phone number")
	fs.Parse(args)

	if *street == "" || *city == "" || *zip == "" {
		fatal("address: -street, -city, and -zip are required")
	}

	path := "/basket/shipping-address"
	if *billing {
		path = "/basket/billing-address"
	}
	call(http.MethodPut, *server+path, map[string]any{
		"first_name":   *first,
		"last_name":    *last,
		"address1":     *street,
		"city":         *city,
		"state_code":   *state,
		"postal_code":  *zip,
		"country_code": *country,
		"phone":        *phone,
	})
}

func runMethods(args []string) {
	fs := flag.NewFlagSet("methods", flag.ExitOnError)
	server := serverFlag(fs)
	fs.Parse(args)

	call(http.MethodGet, *server+"/basket/shipping-methods", nil)
}

func runMethod(args []string) {
	fs := flag.NewFlagSet("method", flag.ExitOnError)
	server := serverFlag(fs)
	id := fs.String("id", "", "shipping method ID (required)")
	fs.Parse(args)

	if *id == "" {
		fatal("method: -id is required")
	}
	call(http.MethodPut, *server+"/basket/shipping-method", map[string]any{
		"shipping_method_id": *id,
	})
}

func runOverride(args []string) {
	fs := flag.NewFlagSet("override", flag.ExitOnError)
	server := serverFlag(fs)
	item := fs.String("item", "", "line item ID (empty targets the shipping method)")
	typ := fs.String("type", "fixed-price", "override type: none, fixed-price, fixed-price-per-unit")
	value := fs.String("value", "", "decimal amount, e.g. 9.99")
	reason := fs.String("reason", "", "reason code")
	manager := fs.String("manager", "", "authorizing manager ID")
	fs.Parse(args)

	body := map[string]any{
		"type":        *typ,
		"value":       *value,
		"reason_code": *reason,
		"manager_id":  *manager,
	}

	path := "/basket/shipping-method/price-override"
	if *item != "" {
		path = "/basket/items/" + *item + "/price-override"
	}
	call(http.MethodPut, *server+path, body)
}

func runCoupon(args []string) {
	fs := flag.NewFlagSet("coupon", flag.ExitOnError)
	server := serverFlag(fs)
	code := fs.String("code", "", "coupon code (required)")
	remove := fs.Bool("remove", false, "remove the code instead of applying it")
	fs.Parse(args)

	if *code == "" {
		fatal("coupon: -code is required")
	}
	if *remove {
		call(http.MethodDelete, *server+"/basket/coupons/"+*code, nil)
		return
	}
	call(http.MethodPost, *server+"/basket/coupons", map[string]any{"code": *code})
}

func runOrder(args []string) {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	server := serverFlag(fs)
	fs.Parse(args)

	call(http.MethodPost, *server+"/basket/order", map[string]any{})
}

func runAbandon(args []string) {
	fs := flag.NewFlagSet("abandon", flag.ExitOnError)
	server := serverFlag(fs)
	employee := fs.String("employee", "", "manager employee ID (required)")
	passcode := fs.String("passcode", "", "manager passcode (required)")
	store := fs.String("store", "", "store ID")
	fs.Parse(args)

	if *employee == "" || *passcode == "" {
		fatal("abandon: -employee and -passcode are required")
	}
	call(http.MethodPost, *server+"/basket/order/abandon", map[string]any{
		"employee_id": *employee,
		"passcode":    *passcode,
		"store_id":    *store,
	})
}

// === HTTP plumbing ===

// call issues one request and pretty-prints the JSON response. Non-2xx
// responses print to stderr and exit non-zero so shell scripts can branch.
func call(method, url string, body any) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fatal(fmt.Sprintf("encoding request: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		fatal(fmt.Sprintf("creating request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fatal(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fatal(fmt.Sprintf("reading response: %v", err))
	}

	pretty := prettyJSON(respBody)
	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "HTTP %d\n%s\n", resp.StatusCode, pretty)
		os.Exit(1)
	}
	fmt.Println(pretty)
}

func prettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
