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
	"github.com/blacktop/go-shrmem64"
	"github.com/blacktop/go-shrmem64/shrmem64test"
	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

// SimulationStep is one request of a simulated lifecycle
type SimulationStep struct {
	Op     string `json:"op"`
	OK     bool   `json:"ok"`
	MemObj string `json:"memobj,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SimulationResult is the JSON output of the simulate command
type SimulationResult struct {
	Token    string           `json:"token"`
	Peer     string           `json:"peer"`
	Segments uint64           `json:"segments"`
	Steps    []SimulationStep `json:"steps"`
	Metrics  shrmem64.Metrics `json:"metrics"`
}

// simulation configures runSimulation
type simulation struct {
	size    uint64
	common  bool
	key     shrmem64.Key
	peer    shrmem64.Token
	fail    string
	failRC  uint32
	failRSN uint32
}

var (
	simSize    string
	simCommon  bool
	simKey     uint8
	simPeer    string
	simFail    string
	simFailRC  uint32
	simFailRSN uint32
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVarP(&simSize, "size", "s", "1MiB", "Object size")
	simulateCmd.Flags().BoolVarP(&simCommon, "common", "c", false, "Allocate a common object")
	simulateCmd.Flags().Uint8VarP(&simKey, "key", "k", 0, "Storage key for common objects")
	simulateCmd.Flags().StringVarP(&simPeer, "peer", "p", "0x00F9B20000000057", "Token of the address space to share with")
	simulateCmd.Flags().StringVarP(&simFail, "fail", "f", "", "Request to fail (getshared, getcommon, sharememobj, detach_single_not_owner, release_single, ...)")
	simulateCmd.Flags().Uint32Var(&simFailRC, "rc", 8, "Return code for the failed request")
	simulateCmd.Flags().Uint32Var(&simFailRSN, "rsn", 0x0A000C01, "Reason code for the failed request")
}

var simulateCmd = &cobra.Command{
	Use:     "simulate",
	Aliases: []string{"sim"},
	Short:   "Run an allocate/share/release lifecycle against the IARV64 simulator",
	Long: `Run an allocate -> share -> detach -> release -> release lifecycle
against the in-memory IARV64 simulator and print every step as JSON.

The second release is expected to fail. Use --fail to inject a failure
into any request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := units.RAMInBytes(simSize)
		if err != nil {
			return errors.Wrapf(err, "invalid size %q", simSize)
		}
		if size < 0 {
			return errors.Newf("size must not be negative, got %d", size)
		}
		peer, err := parseToken(simPeer)
		if err != nil {
			return err
		}
		res, err := runSimulation(simulation{
			size:    uint64(size),
			common:  simCommon,
			key:     shrmem64.Key(simKey),
			peer:    peer,
			fail:    simFail,
			failRC:  simFailRC,
			failRSN: simFailRSN,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func runSimulation(sim simulation) (*SimulationResult, error) {
	f := shrmem64test.NewFacility()
	if sim.fail != "" {
		req, err := shrmem64.ParseRequest(sim.fail)
		if err != nil {
			return nil, err
		}
		f.FailNext(req, sim.failRC, sim.failRSN)
	}

	shrmem64.ResetMetrics()
	c, err := shrmem64.NewWithFacility(f, shrmem64.Options{
		Logger:  logger,
		Context: shrmem64test.Context{ASCB: 0x00F8A100, ASID: 0x0042},
	})
	if err != nil {
		return nil, err
	}

	token := c.AddressSpaceToken()
	res := &SimulationResult{
		Token:    hex64(uint64(token)),
		Peer:     hex64(uint64(sim.peer)),
		Segments: shrmem64.Segments(sim.size),
	}
	step := func(op string, obj shrmem64.MemObj, err error) bool {
		s := SimulationStep{Op: op, OK: err == nil}
		if obj != 0 {
			s.MemObj = hex64(uint64(obj))
		}
		if err != nil {
			s.Error = err.Error()
			var e *shrmem64.Error
			if errors.As(err, &e) {
				s.Kind = e.Kind.String()
				s.Status = e.Status.String()
			}
		}
		res.Steps = append(res.Steps, s)
		return err == nil
	}

	var obj shrmem64.MemObj
	if sim.common {
		obj, err = c.AllocCommonKey(token, sim.size, sim.key)
		if !step("getcommon", obj, err) {
			return finish(res), nil
		}
		// Common objects are addressable everywhere, there is nothing to share
	} else {
		obj, err = c.AllocShared(token, sim.size)
		if !step("getshared", obj, err) {
			return finish(res), nil
		}
		step("sharememobj", obj, c.GrantAccess(sim.peer, obj))
		step("detach_single_not_owner", obj, c.RevokeAccessAs(sim.peer, obj, false))
	}
	step("release_single", obj, c.Release(token, obj))
	step("release_single", obj, c.Release(token, obj))
	step("release_all", 0, c.ReleaseAll(token))

	return finish(res), nil
}

func finish(res *SimulationResult) *SimulationResult {
	res.Metrics = shrmem64.GetMetrics()
	return res
}
