/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"strconv"

	"github.com/blacktop/go-shrmem64"
	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

// ObjectResult is the JSON output of the memory object commands
type ObjectResult struct {
	Op     string `json:"op"`
	Token  string `json:"token"`
	MemObj string `json:"memobj,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status,omitempty"`
	RC     uint32 `json:"rc,omitempty"`
	RSN    string `json:"rsn,omitempty"`
	Error  string `json:"error,omitempty"`
}

func init() {
	rootCmd.AddCommand(allocCmd, grantCmd, revokeCmd, releaseCmd, releaseAllCmd)

	for _, c := range []*cobra.Command{allocCmd, grantCmd, revokeCmd, releaseCmd, releaseAllCmd} {
		c.Flags().StringP("token", "t", "", "Sharing token (default: current address space)")
	}
	allocCmd.Flags().StringP("size", "s", "1MiB", "Object size, rounded up to whole segments")
	allocCmd.Flags().BoolP("common", "c", false, "Allocate a common (system-wide) object")
	allocCmd.Flags().Uint8P("key", "k", 0, "Storage key for common objects")
	revokeCmd.Flags().Bool("not-owner", false, "Detach without ownership")
	revokeCmd.Flags().Bool("all", false, "Detach every object associated with the token")
}

func newSystemClient() (*shrmem64.Client, error) {
	c, err := shrmem64.New(shrmem64.Options{Logger: logger})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open IARV64 facility")
	}
	return c, nil
}

func parseMemObj(v string) (shrmem64.MemObj, error) {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid memory object %q", v)
	}
	return shrmem64.MemObj(n), nil
}

// report prints the outcome of op as JSON. Facility failures are reported in
// the output and also returned so the exit status is non-zero.
func report(op string, token shrmem64.Token, obj shrmem64.MemObj, err error) error {
	res := ObjectResult{Op: op, Token: hex64(uint64(token))}
	if obj != 0 {
		res.MemObj = hex64(uint64(obj))
	}
	if err != nil {
		res.Error = err.Error()
		var e *shrmem64.Error
		if errors.As(err, &e) {
			res.Kind = e.Kind.String()
			res.Status = e.Status.String()
			res.RC = e.RC
			res.RSN = hex64(uint64(e.RSN))
		}
	}
	if perr := printJSON(res); perr != nil {
		return perr
	}
	return err
}

func hex64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

var allocCmd = &cobra.Command{
	Use:   "alloc",
	Short: "Allocate a shared or common memory object",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSystemClient()
		if err != nil {
			return err
		}
		token, err := tokenFlag(cmd, c)
		if err != nil {
			return err
		}
		sizeFlag, _ := cmd.Flags().GetString("size")
		size, err := units.RAMInBytes(sizeFlag)
		if err != nil {
			return errors.Wrapf(err, "invalid size %q", sizeFlag)
		}
		if size <= 0 {
			return errors.Newf("size must be positive, got %d", size)
		}
		common, _ := cmd.Flags().GetBool("common")
		key, _ := cmd.Flags().GetUint8("key")

		var obj shrmem64.MemObj
		op := "getshared"
		if common {
			op = "getcommon"
			obj, err = c.AllocCommonKey(token, uint64(size), shrmem64.Key(key))
		} else {
			obj, err = c.AllocShared(token, uint64(size))
		}
		return report(op, token, obj, err)
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant MEMOBJ",
	Short: "Give the token's address space access to a memory object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSystemClient()
		if err != nil {
			return err
		}
		token, err := tokenFlag(cmd, c)
		if err != nil {
			return err
		}
		obj, err := parseMemObj(args[0])
		if err != nil {
			return err
		}
		return report("sharememobj", token, obj, c.GrantAccess(token, obj))
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke [MEMOBJ]",
	Short: "Remove local access to a memory object",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSystemClient()
		if err != nil {
			return err
		}
		token, err := tokenFlag(cmd, c)
		if err != nil {
			return err
		}
		if all, _ := cmd.Flags().GetBool("all"); all {
			if len(args) != 0 {
				return errors.New("--all does not take a memory object")
			}
			return report("detach_by_token", token, 0, c.RevokeAllAccess(token))
		}
		if len(args) != 1 {
			return errors.New("memory object required (or --all)")
		}
		obj, err := parseMemObj(args[0])
		if err != nil {
			return err
		}
		notOwner, _ := cmd.Flags().GetBool("not-owner")
		return report("detach", token, obj, c.RevokeAccessAs(token, obj, !notOwner))
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release MEMOBJ",
	Short: "Remove system interest in a memory object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSystemClient()
		if err != nil {
			return err
		}
		token, err := tokenFlag(cmd, c)
		if err != nil {
			return err
		}
		obj, err := parseMemObj(args[0])
		if err != nil {
			return err
		}
		return report("release_single", token, obj, c.Release(token, obj))
	},
}

var releaseAllCmd = &cobra.Command{
	Use:   "release-all",
	Short: "Remove system interest in every memory object of a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSystemClient()
		if err != nil {
			return err
		}
		token, err := tokenFlag(cmd, c)
		if err != nil {
			return err
		}
		return report("release_all", token, 0, c.ReleaseAll(token))
	},
}
