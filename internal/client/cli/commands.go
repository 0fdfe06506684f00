package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/githuba42r/imagetools/internal/client/services"
)

const usage = `usage: client [flags] <command>

commands:
  pair <payload>    pair using a QR blob or deep link
  pair-secret       pair by entering an instance URL and shared secret
  status            show the current pairing
  upload <file>     upload an image into the paired session
  unpair            disconnect from the backend
`

// Run dispatches one command. Authorization-state errors are translated to
// the two distinct user-facing situations: "not paired" and "unpaired
// remotely".
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	var err error
	switch args[0] {
	case "pair":
		if len(args) < 2 {
			return errors.New("pair requires a payload argument")
		}
		err = a.cmdPair(ctx, args[1])
	case "pair-secret":
		err = a.cmdPairSecret(ctx)
	case "status":
		err = a.cmdStatus(ctx)
	case "upload":
		if len(args) < 2 {
			return errors.New("upload requires a file argument")
		}
		err = a.cmdUpload(ctx, args[1])
	case "unpair":
		err = a.unpairer.Unpair(ctx)
		if err == nil {
			fmt.Fprintln(a.out, "Unpaired.")
		}
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	return a.explain(err)
}

func (a *App) cmdPair(ctx context.Context, payload string) error {
	cred, err := a.pairing.Pair(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Paired with %s (device %s)\n", cred.InstanceURL, cred.DeviceID)
	return nil
}

func (a *App) cmdPairSecret(ctx context.Context) error {
	instanceURL, err := getSimpleText(a.reader, "Backend instance URL", a.out)
	if err != nil {
		return err
	}
	secret, err := getSecret(a.out)
	if err != nil {
		return err
	}

	cred, err := a.pairing.PairWithSecret(ctx, secret, instanceURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Paired with %s (device %s)\n", cred.InstanceURL, cred.DeviceID)
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	cred, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if cred == nil {
		fmt.Fprintln(a.out, "Not paired.")
		return nil
	}

	fmt.Fprintf(a.out, "Paired with %s\n", cred.InstanceURL)
	if cred.DeviceID != "" {
		fmt.Fprintf(a.out, "Device:  %s\n", cred.DeviceID)
	}
	if cred.SessionID != "" {
		fmt.Fprintf(a.out, "Session: %s\n", cred.SessionID)
	}
	if !cred.AccessExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Access token expires: %s\n", cred.AccessExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func (a *App) cmdUpload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	imageID, err := a.uploader.Upload(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (image %s)\n", filepath.Base(path), imageID)
	return nil
}

// explain rewrites authorization-state errors into user-facing messages:
// being unpaired remotely and never having paired read differently even
// though both end in the same local state. Everything else passes through.
func (a *App) explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUnpaired):
		fmt.Fprintln(a.out, "This device was unpaired from the web interface. Pair again to continue.")
		return err
	case errors.Is(err, services.ErrReauthRequired):
		fmt.Fprintln(a.out, "Not paired. Run 'pair' or 'pair-secret' first.")
		return err
	default:
		return err
	}
}
