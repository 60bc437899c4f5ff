/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command that every subcommand registers itself onto
// via AddCommand in its own init().
var rootCmd = &cobra.Command{
	Use:   "rbfmap",
	Short: "RBF-based mesh-to-mesh data mapping",
	Long:  `rbfmap computes and applies radial-basis-function mappings between two meshes, following the consistent/conservative/scaled-consistent constraints used by mesh-based multi-physics couplings.`,
}

// Execute runs the root command; main.go's only job is to call this.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "viper config file (none is read unless given)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose event-timing output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
