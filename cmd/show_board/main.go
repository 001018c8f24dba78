package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/motifs"
	"github.com/lk16/chessreview/internal/rules"
)

func main() {
	fen := flag.String("fen", string(models.StartPosition), "the position to show")
	move := flag.String("move", "", "a move to play, in UCI or SAN, showing its motifs")
	flag.Parse()

	pos := models.Position(strings.TrimSpace(*fen))

	state, err := pos.Board()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *move == "" {
		state.Print()
		return
	}

	ply, err := rules.Play(pos, *move)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	after, err := ply.AfterFEN.Board()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	after.Print()
	fmt.Printf("move: %s (%s)\n", ply.Move.SAN, ply.Move.UCI)
	fmt.Printf("fen: %s\n", ply.AfterFEN)

	labels := motifs.DetectPly(ply)
	if len(labels) == 0 {
		fmt.Println("motifs: none")
		return
	}

	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = string(label)
	}
	fmt.Printf("motifs: %s\n", strings.Join(names, ", "))
}
