package kv

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/containers"
	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/*
	The typed commands address containers by their raw prefix. Values travel through the
	containers as bytes and the selected text codec converts them, so the stored layout is
	exactly the one a program using Item[T] or Map[K, Item[T]] with the same codecs writes.
*/

var (
	itemCmd = &cobra.Command{
		Use:   "item",
		Short: "Read and write a typed item",
	}
	itemGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Prints the value of the item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := itemOptionsFromFlags()
			if err != nil {
				return err
			}
			return runItemGet(cmd.OutOrStdout(), rpcStore, opts)
		},
	}
	itemSetCmd = &cobra.Command{
		Use:   "set [value]",
		Short: "Sets the value of the item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := itemOptionsFromFlags()
			if err != nil {
				return err
			}
			return runItemSet(cmd.OutOrStdout(), rpcStore, opts, args[0])
		},
	}
	itemRemoveCmd = &cobra.Command{
		Use:   "remove",
		Short: "Removes the value of the item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := itemOptionsFromFlags()
			if err != nil {
				return err
			}
			return runItemRemove(cmd.OutOrStdout(), rpcStore, opts)
		},
	}

	mapCmd = &cobra.Command{
		Use:   "map",
		Short: "Read and write the entries of a typed map of items",
	}
	mapGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Prints the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mapOptionsFromFlags()
			if err != nil {
				return err
			}
			return runMapGet(cmd.OutOrStdout(), rpcStore, opts, args[0])
		},
	}
	mapSetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value stored under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mapOptionsFromFlags()
			if err != nil {
				return err
			}
			return runMapSet(cmd.OutOrStdout(), rpcStore, opts, args[0], args[1])
		},
	}
	mapRemoveCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Removes the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mapOptionsFromFlags()
			if err != nil {
				return err
			}
			return runMapRemove(cmd.OutOrStdout(), rpcStore, opts, args[0])
		},
	}
	mapListCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists the entries of the map in key order",
		Long:  "Lists the entries of the map in the byte order of the stored keys. Entries that cannot be decoded are listed with their raw key and the error.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := mapOptionsFromFlags()
			if err != nil {
				return err
			}
			return runMapList(cmd.OutOrStdout(), rpcStore, opts, viper.GetInt("limit"))
		},
	}
)

func init() {
	itemCmd.PersistentFlags().String("prefix", "", util.WrapString("Hex encoded key of the item"))
	itemCmd.PersistentFlags().String("codec", "string", util.WrapString("Codec of the value (string, hex, uint64, int64, json, cbor)"))
	itemCmd.AddCommand(itemGetCmd, itemSetCmd, itemRemoveCmd)

	mapCmd.PersistentFlags().String("prefix", "", util.WrapString("Hex encoded prefix of the map"))
	mapCmd.PersistentFlags().String("key-codec", "string", util.WrapString("Codec of the map keys (string, hex, uint64, int64)"))
	mapCmd.PersistentFlags().String("codec", "string", util.WrapString("Codec of the values (string, hex, uint64, int64, json, cbor)"))
	mapListCmd.Flags().Int("limit", 0, util.WrapString("Maximum number of entries to print (0 prints all)"))
	mapCmd.AddCommand(mapGetCmd, mapSetCmd, mapRemoveCmd, mapListCmd)
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type itemOptions struct {
	prefix []byte
	codec  util.TextCodec
}

type mapOptions struct {
	prefix []byte
	keys   util.TextCodec
	values util.TextCodec
}

func itemOptionsFromFlags() (itemOptions, error) {
	prefix, err := hex.DecodeString(viper.GetString("prefix"))
	if err != nil {
		return itemOptions{}, fmt.Errorf("invalid prefix: %w", err)
	}
	codec, err := util.ValueCodecByName(viper.GetString("codec"))
	if err != nil {
		return itemOptions{}, err
	}
	return itemOptions{prefix: prefix, codec: codec}, nil
}

func mapOptionsFromFlags() (mapOptions, error) {
	prefix, err := hex.DecodeString(viper.GetString("prefix"))
	if err != nil {
		return mapOptions{}, fmt.Errorf("invalid prefix: %w", err)
	}
	keys, err := util.KeyCodecByName(viper.GetString("key-codec"))
	if err != nil {
		return mapOptions{}, err
	}
	values, err := util.ValueCodecByName(viper.GetString("codec"))
	if err != nil {
		return mapOptions{}, err
	}
	return mapOptions{prefix: prefix, keys: keys, values: values}, nil
}

// --------------------------------------------------------------------------
// Item
// --------------------------------------------------------------------------

func rawItem(prefix []byte) *containers.Item[[]byte] {
	return containers.NewItemAt(prefix, encoding.Bytes())
}

func runItemGet(w io.Writer, s store.IStore, opts itemOptions) error {
	raw, ok, err := rawItem(opts.prefix).Access(s).Get()
	if err != nil {
		return err
	}
	return printValue(w, opts.codec, raw, ok)
}

func runItemSet(w io.Writer, s store.IStore, opts itemOptions, text string) error {
	raw, err := opts.codec.Parse(text)
	if err != nil {
		return err
	}
	if err := rawItem(opts.prefix).Access(s).Set(raw); err != nil {
		return err
	}
	fmt.Fprintln(w, "set successfully")
	return nil
}

func runItemRemove(w io.Writer, s store.IStore, opts itemOptions) error {
	if err := rawItem(opts.prefix).Access(s).Remove(); err != nil {
		return err
	}
	fmt.Fprintln(w, "remove successfully")
	return nil
}

// --------------------------------------------------------------------------
// Map
// --------------------------------------------------------------------------

func rawMap(prefix []byte) *containers.Map[[]byte, struct{}, []byte, *containers.ItemAccess[[]byte]] {
	return containers.NewMapAt(prefix, containers.BytesKey(), containers.ItemValue(encoding.Bytes()))
}

// mapItem returns the accessor of the item stored under the key given as text
func mapItem(s store.IStore, opts mapOptions, keyText string) (*containers.ItemAccess[[]byte], error) {
	seg, err := opts.keys.Parse(keyText)
	if err != nil {
		return nil, err
	}
	return rawMap(opts.prefix).Access(s).Get(seg)
}

func runMapGet(w io.Writer, s store.IStore, opts mapOptions, keyText string) error {
	item, err := mapItem(s, opts, keyText)
	if err != nil {
		return err
	}
	raw, ok, err := item.Get()
	if err != nil {
		return err
	}
	return printValue(w, opts.values, raw, ok)
}

func runMapSet(w io.Writer, s store.IStore, opts mapOptions, keyText, valueText string) error {
	item, err := mapItem(s, opts, keyText)
	if err != nil {
		return err
	}
	raw, err := opts.values.Parse(valueText)
	if err != nil {
		return err
	}
	if err := item.Set(raw); err != nil {
		return err
	}
	fmt.Fprintln(w, "set successfully")
	return nil
}

func runMapRemove(w io.Writer, s store.IStore, opts mapOptions, keyText string) error {
	item, err := mapItem(s, opts, keyText)
	if err != nil {
		return err
	}
	if err := item.Remove(); err != nil {
		return err
	}
	fmt.Fprintln(w, "remove successfully")
	return nil
}

// runMapList prints one line per entry. Decode failures are printed in place and do not stop the listing,
// store errors do.
func runMapList(w io.Writer, s store.IStore, opts mapOptions, limit int) error {
	count, failed := 0, 0
	for entry, err := range rawMap(opts.prefix).Access(s).Iter() {
		if limit > 0 && count+failed >= limit {
			break
		}

		var decodeErr *containers.KeyValueDecodeError
		if errors.As(err, &decodeErr) {
			fmt.Fprintf(w, "! %x: %v\n", decodeErr.RawKey, decodeErr)
			failed++
			continue
		} else if err != nil {
			return err
		}

		key, err := opts.keys.Format(entry.Key.Key)
		if err != nil {
			fmt.Fprintf(w, "! %x: invalid %s key: %v\n", entry.Key.Key, opts.keys.Name(), err)
			failed++
			continue
		}
		value, err := opts.values.Format(entry.Value)
		if err != nil {
			fmt.Fprintf(w, "! %s: invalid %s value: %v\n", key, opts.values.Name(), err)
			failed++
			continue
		}

		fmt.Fprintf(w, "%s=%s\n", key, value)
		count++
	}

	fmt.Fprintf(w, "(%d entries, %d failed)\n", count, failed)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func printValue(w io.Writer, codec util.TextCodec, raw []byte, ok bool) error {
	if !ok {
		fmt.Fprintln(w, "found=false")
		return nil
	}
	value, err := codec.Format(raw)
	if err != nil {
		return fmt.Errorf("stored value %x is not a valid %s value: %w", raw, codec.Name(), err)
	}
	fmt.Fprintf(w, "found=true, value=%s\n", value)
	return nil
}
