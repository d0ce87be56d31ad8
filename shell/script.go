package shell

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

const shellGlobal = "tictactoe_shell"

// scriptCommands are exposed to Lua as tictactoe_<name>(args).
var scriptCommands = []string{
	"new", "play", "ai", "hint", "show", "score", "finish", "set", "autoplay",
}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal(shellGlobal)
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// command runs a shell command from Lua. It returns the command's output,
// or nil and the error message.
func command(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		sc := getShell(L)
		cmd, err := extractFields(strings.TrimSpace(name + " " + L.OptString(1, "")))
		if err == nil {
			var r *Response
			r, err = sc.dispatch(cmd)
			if err == nil {
				if r == nil {
					r = msg("")
				}
				L.Push(lua.LString(r.message))
				return 1
			}
		}
		log.Err(err).Str("cmd", name).Msg("error-executing-script-command")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
}

// Rows returns the board as a table of row strings.
func Rows(L *lua.LState) int {
	sc := getShell(L)
	tbl := L.NewTable()
	for _, row := range sc.runner.Game().Snapshot().Rows() {
		tbl.Append(lua.LString(row))
	}
	L.Push(tbl)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal(shellGlobal, lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("tictactoe_"+name, L.NewFunction(command(name)))
	}
	L.SetGlobal("tictactoe_rows", L.NewFunction(Rows))

	// print goes to the command's output rather than stdout.
	var out strings.Builder
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		out.WriteString(strings.Join(parts, "\t"))
		out.WriteString("\n")
		return 0
	}))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("script-failed")
		return nil, err
	}
	return msg(strings.TrimSuffix(out.String(), "\n")), nil
}
