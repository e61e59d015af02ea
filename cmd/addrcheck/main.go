// Command addrcheck validates one address and prints the interpreted result.
//
//	addrcheck [-usps] [-json] [-region CC] [-session TOKEN | -new-session] "address text"
//	addrcheck -feedback CONCLUSION -response-id ID
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/addressvalidation/internal"
	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/cache"
	"github.com/dukerupert/addressvalidation/internal/client"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/validation"
)

var errUsage = errors.New("usage")

type options struct {
	usps         bool
	asJSON       bool
	region       string
	session      string
	newSession   bool
	englishLatin bool
	skipCache    bool
	feedback     string
	responseID   string
	text         string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("addrcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.usps, "usps", false, "enable USPS CASS processing")
	fs.BoolVar(&o.asJSON, "json", false, "print the summary as JSON")
	fs.StringVar(&o.region, "region", "", "CLDR region code, sends the address as structured input")
	fs.StringVar(&o.session, "session", "", "session token to attach")
	fs.BoolVar(&o.newSession, "new-session", false, "generate a new session token and print it")
	fs.BoolVar(&o.englishLatin, "english-latin", false, "also return the address in English Latin script")
	fs.BoolVar(&o.skipCache, "skip-cache", false, "bypass the cache lookup")
	fs.StringVar(&o.feedback, "feedback", "", "send a validation conclusion instead of validating")
	fs.StringVar(&o.responseID, "response-id", "", "response id the feedback refers to")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `usage: addrcheck [flags] "address text"`)
		fmt.Fprintln(fs.Output(), `       addrcheck -feedback CONCLUSION -response-id ID`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}

	if o.feedback != "" {
		if o.responseID == "" || fs.NArg() > 0 {
			fs.Usage()
			return o, errUsage
		}
		return o, nil
	}

	if o.session != "" && o.newSession {
		fmt.Fprintln(stderr, "-session and -new-session are mutually exclusive")
		return o, errUsage
	}
	o.text = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if o.text == "" {
		fs.Usage()
		return o, errUsage
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := internal.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logger := internal.NewLogger(stderr, cfg.Env, cfg.LogLevel)

	// The CLI only shares a cache when one lives outside the process.
	var store cache.Store = cache.NopStore{}
	if cfg.Cache.Backend == cache.BackendRedis {
		store, err = cache.Open(ctx, cache.Options{
			Backend: cache.BackendRedis,
			Redis: cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
			},
		})
		if err != nil {
			logger.Warn("redis cache unavailable, continuing without cache", "error", err)
			store = cache.NopStore{}
		}
	}
	defer store.Close()

	c, err := client.New(client.Config{
		APIKey:   cfg.Google.APIKey,
		Endpoint: cfg.Google.Endpoint,
		Timeout:  cfg.Google.Timeout,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if o.feedback != "" {
		if err := c.ProvideFeedback(ctx, o.responseID, request.FeedbackConclusion(strings.ToUpper(o.feedback))); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "feedback sent")
		return nil
	}

	session := o.session
	if o.newSession {
		session = uuid.NewString()
		fmt.Fprintf(stderr, "session: %s\n", session)
	}

	input := address.FromString(o.text)
	if o.region != "" {
		input = address.FromPostalAddress(address.PostalAddress{
			RegionCode:   strings.ToUpper(o.region),
			AddressLines: []string{o.text},
		})
	}

	opts := client.ValidateOptions{SessionToken: session, SkipCache: o.skipCache}
	if o.usps || cfg.Google.EnableUSPSCASS {
		opts.Options.EnableUSPSCASS = request.Bool(true)
	}
	if o.englishLatin || cfg.Google.ReturnEnglishLatinAddress {
		opts.Options.LanguageOptions = &request.LanguageOptions{ReturnEnglishLatinAddress: true}
	}

	result, err := c.Validate(ctx, input, opts)
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary())
	}
	printSummary(stdout, result.Summary())
	return nil
}

func printSummary(w io.Writer, s validation.Summary) {
	fmt.Fprintf(w, "Address:     %s\n", s.FormattedAddress)
	fmt.Fprintf(w, "Response ID: %s\n", s.ResponseID)
	fmt.Fprintf(w, "Confidence:  %s\n", s.ConfidenceLevel)
	fmt.Fprintf(w, "Valid:       %t\n", s.IsValid)
	fmt.Fprintf(w, "Score:       %d (%s)\n", s.Score, s.Rating)
	fmt.Fprintf(w, "Type:        %s\n", s.AddressType)
	fmt.Fprintf(w, "Deliverable: %t\n", s.Flags.IsDeliverable)
	if s.PossibleNextAction != "" {
		fmt.Fprintf(w, "Next action: %s\n", s.PossibleNextAction)
	}
	if s.USPS != nil {
		fmt.Fprintf(w, "USPS DPV:    %s\n", s.USPS.DPVConfirmation)
	}
	for _, issue := range s.Issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "addrcheck:", err)
		os.Exit(1)
	}
}
