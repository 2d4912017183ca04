package kv

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd.OutOrStdout(), rpcStore, args[0], args[1], viper.GetBool("hex"))
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.OutOrStdout(), rpcStore, args[0], viper.GetBool("hex"))
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.OutOrStdout(), rpcStore, args[0], viper.GetBool("hex"))
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan [start] [end]",
		Short: "Lists the pairs with start <= key < end in key order",
		Long:  "Lists the pairs with start <= key < end in key order. A missing start or end leaves the range open on that side.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.OutOrStdout(), rpcStore, args, viper.GetInt("limit"), viper.GetBool("hex"))
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the database of the shard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd.OutOrStdout(), rpcStore)
		},
	}
)

func init() {
	scanCmd.Flags().Int("limit", 0, util.WrapString("Maximum number of pairs to print (0 prints all)"))
}

// --------------------------------------------------------------------------
// Command Implementations
// --------------------------------------------------------------------------

func runSet(w io.Writer, s store.IStore, keyArg, valueArg string, asHex bool) error {
	key, err := util.ParseBytes(keyArg, asHex)
	if err != nil {
		return err
	}
	value, err := util.ParseBytes(valueArg, asHex)
	if err != nil {
		return err
	}
	if err := s.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintln(w, "set successfully")
	return nil
}

func runGet(w io.Writer, s store.IStore, keyArg string, asHex bool) error {
	key, err := util.ParseBytes(keyArg, asHex)
	if err != nil {
		return err
	}
	value, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "key=%s, found=%t, value=%s\n", keyArg, ok, util.FormatBytes(value, asHex))
	return nil
}

func runDelete(w io.Writer, s store.IStore, keyArg string, asHex bool) error {
	key, err := util.ParseBytes(keyArg, asHex)
	if err != nil {
		return err
	}
	if err := s.Delete(key); err != nil {
		return err
	}
	fmt.Fprintln(w, "delete successfully")
	return nil
}

func runScan(w io.Writer, s store.IIterableStore, args []string, limit int, asHex bool) error {
	var bounds [2][]byte
	for i, arg := range args {
		b, err := util.ParseBytes(arg, asHex)
		if err != nil {
			return err
		}
		bounds[i] = b
	}

	count := 0
	for pair, err := range s.Pairs(bounds[0], bounds[1]) {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s=%s\n", util.FormatBytes(pair.Key, asHex), util.FormatBytes(pair.Value, asHex))
		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	fmt.Fprintf(w, "(%d pairs)\n", count)
	return nil
}

func runInfo(w io.Writer, s store.IInfoStore) error {
	info, err := s.GetDBInfo()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}
