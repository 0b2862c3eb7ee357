// Command omgupl uploads and downloads zero-knowledge pastes. Files are
// sealed locally before upload; the printed link carries the decryption
// key in its fragment, which browsers and this tool never send to the
// server.
package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/omgupl/omgupl/crypto"
	"github.com/omgupl/omgupl/expire"
	"github.com/omgupl/omgupl/fragment"
	"github.com/omgupl/omgupl/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return usageError()
	}

	switch args[0] {
	case "upload":
		return runUpload(args[1:])
	case "download":
		return runDownload(args[1:])
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("usage: omgupl upload [--password] [--duration d] [--name n] [--lang l] <url> <path>\n" +
		"       omgupl download <url>")
}

func runUpload(args []string) error {
	flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
	withPassword := flags.BoolP("password", "p", false, "protect the paste with a password")
	duration := flags.StringP("duration", "d", "", "paste lifetime: read, 5m, 10m, 1h or 1d")
	name := flags.String("name", "", "attach a file name hint to the link")
	lang := flags.String("lang", "", "attach a syntax highlighting hint to the link")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return usageError()
	}

	base, err := url.Parse(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("bad server url: %w", err)
	}
	base.Fragment = ""

	var exp *expire.Expiration
	if *duration != "" {
		parsed, err := expire.Parse(*duration)
		if err != nil {
			return err
		}
		exp = &parsed
	}

	data, err := os.ReadFile(flags.Arg(1))
	if err != nil {
		return err
	}

	var password []byte
	if *withPassword {
		password, err = promptPassword("Please set the password for this paste: ")
		if err != nil {
			return err
		}
		defer crypto.ZeroBytes(password)
	}

	sealed, key, err := crypto.Seal(data, password)
	if err != nil {
		return err
	}
	defer key.Wipe()

	req, err := http.NewRequest(http.MethodPost, base.String(), bytes.NewReader(sealed))
	if err != nil {
		return err
	}
	if exp != nil {
		req.Header.Set(expire.HeaderName, exp.HeaderValue())
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to server failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed: got HTTP error %s", res.Status)
	}
	code, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	builder := fragment.NewBuilder(key)
	if *withPassword {
		builder.NeedsPassword()
	}
	if *name != "" {
		builder.FileName(*name)
	}
	if *lang != "" {
		builder.Language(*lang)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + string(code)
	base.Fragment = builder.Build()

	fmt.Println(base.String())
	return nil
}

func runDownload(args []string) error {
	flags := pflag.NewFlagSet("download", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usageError()
	}

	parsed, err := fragment.ParseURL(flags.Arg(0))
	if err != nil {
		return err
	}
	defer parsed.Key.Wipe()

	u := parsed.SanitizedURL
	u.Path = server.APIPrefix + u.Path

	res, err := http.Get(u.String())
	if err != nil {
		return fmt.Errorf("failed to get paste: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("got bad response from server: %s", res.Status)
	}

	notice := "This paste will not expire."
	if v := res.Header.Get("Expires"); v != "" {
		if exp, err := expire.ParseHeaderValue(v); err == nil {
			notice = exp.String()
		}
	}

	sealed, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var password []byte
	if parsed.NeedsPassword {
		password, err = promptPassword("Please enter the password to access this paste: ")
		if err != nil {
			return err
		}
		defer crypto.ZeroBytes(password)
	}

	data, err := crypto.Open(sealed, parsed.Key, password)
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdout.Fd())) && !utf8.Valid(data) {
		return fmt.Errorf("binary output detected, please pipe to a file")
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, notice)
	return nil
}

// promptPassword reads a password from the terminal without echo. The
// prompt goes to stderr so piped output stays clean.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}
