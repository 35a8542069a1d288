package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/cardback"
)

var flagRaw bool

var cardbackCmd = &cobra.Command{
	Use:   "cardback",
	Short: "Customize the card back",
	Long: `Set, reset or show the card-back image of the current principal.
The image is stored in the database as a data URL.

Examples:
  memory cardback set ./back.png
  memory cardback show
  memory cardback reset`,
}

var cardbackSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Use an image file as the card back",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardbackSet,
}

var cardbackResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in card back",
	Args:  cobra.NoArgs,
	RunE:  runCardbackReset,
}

var cardbackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active card back",
	Args:  cobra.NoArgs,
	RunE:  runCardbackShow,
}

func init() {
	cardbackShowCmd.Flags().BoolVar(&flagRaw, "raw", false, "Print the stored data URL")

	cardbackCmd.AddCommand(cardbackSetCmd)
	cardbackCmd.AddCommand(cardbackResetCmd)
	cardbackCmd.AddCommand(cardbackShowCmd)
}

// cardbackApp sets up and opens the card-back store.
func cardbackApp(cmd *cobra.Command) (*app, *cardback.Store, error) {
	a, err := setup()
	if err != nil {
		return nil, nil, err
	}
	store := a.cardBack(cmd.Context())
	if store == nil {
		a.close()
		return nil, nil, errors.New("card backs need the database")
	}
	return a, store, nil
}

func runCardbackSet(cmd *cobra.Command, args []string) error {
	a, store, err := cardbackApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := cardback.FileFromPath(args[0])
	if err != nil {
		return err
	}
	if err := store.SelectFile(cmd.Context(), f); err != nil {
		return err
	}
	if err := store.Apply(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Card back set from %s\n", f.Name)
	return nil
}

func runCardbackReset(cmd *cobra.Command, _ []string) error {
	a, store, err := cardbackApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.ResetToDefault(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Card back reset to default.")
	return nil
}

func runCardbackShow(cmd *cobra.Command, _ []string) error {
	a, store, err := cardbackApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	active := store.Active()
	if flagRaw {
		fmt.Println(active)
		return nil
	}
	if !store.IsCustom() {
		fmt.Println("Card back: built-in")
		return nil
	}

	mime, data, err := cardback.DecodeDataURL(active)
	if err != nil {
		return err
	}
	fmt.Printf("Card back: custom (%s, %d bytes)\n", mime, len(data))
	if tint, err := cardback.Swatch(active); err == nil {
		fmt.Printf("Tint: %s\n", tint)
	}
	return nil
}
