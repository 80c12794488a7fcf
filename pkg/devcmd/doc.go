/*
Package devcmd turns a device type's table of operations into a command-line group.

A device class is registered once, with an ordered list of Descriptors built by Describe:

	var Class = devcmd.MustRegister(devcmd.ClassSpec[*Plug]{
		Name: "plug",
		New:  New,
		Commands: func() []*devcmd.Descriptor[*Plug] {
			return []*devcmd.Descriptor[*Plug]{
				devcmd.Describe("On", (*Plug).on, devcmd.Use(devcmd.EchoResult(devcmd.Template("Powering on"))), devcmd.Doc("Power on.")),
				devcmd.Describe("Status", (*Plug).status),
			}
		},
	})

Class.Command() then yields a urfave/cli command whose subcommands are the sorted command names.
The group takes --address and --token (validated), and builds exactly one device handle per
invocation, right before the first chosen subcommand runs; every subcommand of that invocation
is a bound call on that one handle.

Each command's handler is wrapped in its Middleware, the first declared being the outermost,
in the same way ChainCmdMiddleware composes cli actions.
Device faults (devicectl-error-device*) are meant to be intercepted once, around the whole
program, by Guard.
*/
package devcmd
