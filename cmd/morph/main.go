package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/urfave/cli/v2"

	"github.com/npillmayer/morph"
	"github.com/npillmayer/morph/config"
	"github.com/npillmayer/morph/dict"
)

const (
	flagConfig   = "config"
	flagDict     = "dict"
	flagUser     = "user"
	flagMode     = "mode"
	flagNBest    = "nbest"
	flagJSON     = "json"
	flagGraphviz = "graphviz"
	flagVerbose  = "verbose"
)

const nbestUsage = "morph nbest-cost text-token[/text-token...]"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	app = &cli.App{
		Name:        "morph",
		Usage:       "morph [command]",
		Description: "Morphological analysis of Japanese text.",
		Version:     "v0.1.0",
	}
	tokenizeCmd = &cli.Command{
		Name:        "tokenize",
		Usage:       "morph tokenize [text ...]",
		Description: "Segment text given as arguments, or stdin line by line",
		Action:      tokenize,
	}
	nbestCmd = &cli.Command{
		Name:        "nbest-cost",
		Usage:       nbestUsage,
		Description: "Compute the N-best cost needed to produce the given tokens",
		Action:      nbestCost,
	}
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "TOML configuration file"},
	&cli.StringFlag{Name: flagDict, Aliases: []string{"d"}, Usage: "dictionary directory"},
	&cli.StringFlag{Name: flagUser, Aliases: []string{"u"}, Usage: "user dictionary (CSV)"},
	&cli.StringFlag{Name: flagMode, Aliases: []string{"m"}, Usage: "normal, search or extended"},
	&cli.BoolFlag{Name: flagVerbose, Aliases: []string{"v"}, Usage: "trace at debug level"},
}

func init() {
	tokenizeCmd.Flags = append(tokenizeCmd.Flags, commonFlags...)
	tokenizeCmd.Flags = append(tokenizeCmd.Flags,
		&cli.IntFlag{Name: flagNBest, Usage: "N-best cost, 0 for best path only"},
		&cli.BoolFlag{Name: flagJSON, Usage: "print tokens as JSON lines"},
		&cli.StringFlag{Name: flagGraphviz, Usage: "write the lattice as Graphviz source to this file"},
	)
	nbestCmd.Flags = append(nbestCmd.Flags, commonFlags...)
	app.Commands = append(app.Commands, tokenizeCmd, nbestCmd)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "morph: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the configuration file with command line flags.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	conf := config.Default()
	if path := ctx.String(flagConfig); path != "" {
		var err error
		if conf, err = config.Load(path); err != nil {
			return conf, err
		}
	}
	if ctx.IsSet(flagDict) {
		conf.DictionaryDir = ctx.String(flagDict)
	}
	if ctx.IsSet(flagUser) {
		conf.UserDictionary = ctx.String(flagUser)
	}
	if ctx.IsSet(flagMode) {
		conf.Mode = ctx.String(flagMode)
	}
	if ctx.IsSet(flagNBest) {
		conf.NBestCost = ctx.Int(flagNBest)
	}
	if ctx.Bool(flagVerbose) {
		tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
		for _, key := range []string{"morph", "morph.dict", "morph.fst"} {
			tracing.Select(key).SetTraceLevel(tracing.LevelDebug)
		}
	}
	return conf, nil
}

func openTokenizer(ctx *cli.Context, graphviz bool) (*morph.Tokenizer, *dict.Resources, *morph.GraphvizFormatter, error) {
	conf, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	res, user, err := conf.Open()
	if err != nil {
		return nil, nil, nil, err
	}
	var dot *morph.GraphvizFormatter
	var extra []morph.Option
	if graphviz {
		dot = morph.NewGraphvizFormatter(res.Costs)
		extra = append(extra, morph.WithGraphviz(dot))
	}
	t, err := conf.NewTokenizer(res, user, extra...)
	if err != nil {
		res.Close()
		return nil, nil, nil, err
	}
	return t, res, dot, nil
}

func tokenize(ctx *cli.Context) error {
	t, res, dot, err := openTokenizer(ctx, ctx.String(flagGraphviz) != "")
	if err != nil {
		return err
	}
	defer res.Close()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	printer := printPlain
	if ctx.Bool(flagJSON) {
		printer = printJSON
	}
	if ctx.NArg() > 0 {
		if err := segment(t, strings.NewReader(strings.Join(ctx.Args().Slice(), " ")), out, printer); err != nil {
			return err
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := segment(t, strings.NewReader(scanner.Text()), out, printer); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}
	if dot != nil {
		return os.WriteFile(ctx.String(flagGraphviz), []byte(dot.Finish()), 0o644)
	}
	return nil
}

type printFunc func(w io.Writer, tok *morph.Token) error

func segment(t *morph.Tokenizer, r io.Reader, w io.Writer, emit printFunc) error {
	t.Reset(r)
	for {
		tok, err := t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err = emit(w, tok); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "EOS")
	return err
}

func printPlain(w io.Writer, tok *morph.Token) error {
	_, err := fmt.Fprintf(w, "%s\t%s,%s,%s,%s,%s,%s\t%s\n", tok.Surface(), tok.PartOfSpeech(),
		tok.InflectionType(), tok.InflectionForm(), tok.BaseForm(), tok.Reading(), tok.Pronunciation(), tok.Type())
	return err
}

type jsonToken struct {
	Surface        string `json:"surface"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	PosInc         int    `json:"posInc"`
	PosLen         int    `json:"posLen"`
	Type           string `json:"type"`
	PartOfSpeech   string `json:"pos,omitempty"`
	InflectionType string `json:"inflectionType,omitempty"`
	InflectionForm string `json:"inflectionForm,omitempty"`
	BaseForm       string `json:"baseForm,omitempty"`
	Reading        string `json:"reading,omitempty"`
	Pronunciation  string `json:"pronunciation,omitempty"`
}

func printJSON(w io.Writer, tok *morph.Token) error {
	data, err := json.Marshal(jsonToken{
		Surface:        tok.Surface(),
		Start:          tok.Start(),
		End:            tok.End(),
		PosInc:         tok.PositionIncrement(),
		PosLen:         tok.PositionLength(),
		Type:           tok.Type().String(),
		PartOfSpeech:   tok.PartOfSpeech(),
		InflectionType: tok.InflectionType(),
		InflectionForm: tok.InflectionForm(),
		BaseForm:       tok.BaseForm(),
		Reading:        tok.Reading(),
		Pronunciation:  tok.Pronunciation(),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func nbestCost(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: %s", nbestUsage)
	}
	t, res, _, err := openTokenizer(ctx, false)
	if err != nil {
		return err
	}
	defer res.Close()
	cost, err := t.CalcNBestCost(ctx.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(cost)
	return nil
}
