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
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/rbfmap/config"
	"github.com/notargets/rbfmap/eventtiming"
	"github.com/notargets/rbfmap/mapping"
	"github.com/notargets/rbfmap/mesh"
	"github.com/notargets/rbfmap/nearestneighbor"
)

// MapOptions mirrors Model2D's flags-into-a-struct shape from cmd/2D.go's
// TwoDCmd, adapted to the mapping domain's inputs: a config file plus two
// mesh files instead of a grid file plus an initial-conditions file.
type MapOptions struct {
	ConfigFile string
	InputFile  string
	OutputFile string
}

// mapCmd represents the mapping-computation command.
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Compute and apply an RBF mapping between two meshes",
	Long:  `Loads a mapping configuration and two vertex files (input and output meshes with their data), computes the mapping, applies it, and reports timing when --verbose is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := MapOptions{}
		var err error
		if opts.ConfigFile, err = cmd.Flags().GetString("configFile"); err != nil {
			panic(err)
		}
		if opts.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			panic(err)
		}
		if opts.OutputFile, err = cmd.Flags().GetString("outputFile"); err != nil {
			panic(err)
		}
		if err := runMap(opts); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringP("configFile", "c", "", "YAML mapping configuration file")
	mapCmd.Flags().StringP("inputFile", "i", "", "input mesh/data file")
	mapCmd.Flags().StringP("outputFile", "o", "", "output mesh file (data is overwritten)")
	_ = viper.BindPFlag("map.configFile", mapCmd.Flags().Lookup("configFile"))
}

func runMap(opts MapOptions) error {
	if opts.ConfigFile == "" || opts.InputFile == "" || opts.OutputFile == "" {
		return fmt.Errorf("must supply -c/--configFile, -i/--inputFile and -o/--outputFile")
	}

	log := &eventtiming.Log{}

	loadEvt := eventtiming.Begin("load")
	data, err := ioutil.ReadFile(opts.ConfigFile)
	if err != nil {
		return err
	}
	var cfg config.MappingConfig
	if err := cfg.Parse(data); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		cfg.Print()
	}

	inMesh, inField, err := loadMeshFile(opts.InputFile)
	if err != nil {
		return err
	}
	outMesh, outField, err := loadMeshFile(opts.OutputFile)
	if err != nil {
		return err
	}
	log.Record(loadEvt)

	computeEvt := eventtiming.Begin("computeMapping")
	if cfg.Solver == config.SolverNearestNeighbor {
		nn, err := nearestneighbor.New(cfg.Name, cfg.Constraint, mesh.DeadAxis{cfg.DeadAxisX, cfg.DeadAxisY, cfg.DeadAxisZ})
		if err != nil {
			return err
		}
		if err := nn.SetMeshes(inMesh, outMesh); err != nil {
			return err
		}
		if err := nn.ComputeMapping(); err != nil {
			return err
		}
		log.Record(computeEvt)

		mapEvt := eventtiming.Begin("map")
		if err := nn.Map(inField, outField); err != nil {
			return err
		}
		log.Record(mapEvt)
	} else {
		basis, err := cfg.BuildBasis()
		if err != nil {
			return err
		}
		m := mapping.NewMapping(cfg, basis)
		if err := m.SetMeshes(inMesh, outMesh); err != nil {
			return err
		}
		if err := m.ComputeMapping(); err != nil {
			return err
		}
		log.Record(computeEvt)

		mapEvt := eventtiming.Begin("map")
		if err := m.Map(inField, outField); err != nil {
			return err
		}
		log.Record(mapEvt)
	}

	if viper.GetBool("verbose") {
		log.Print()
	}
	return writeResultFile(opts.OutputFile, outMesh, outField)
}
