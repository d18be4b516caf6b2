// Package pgmkit is a small toolkit of classical probabilistic and
// statistical learning algorithms for Go: hidden Markov model inference,
// maximum-likelihood parameter estimation and ID3-style decision trees.
//
// Every operation is pure and synchronous: inputs are validated at the
// boundary and failures are returned as typed errors from pkg/errors.
//
// # Installation
//
//	go get github.com/YuminosukeSato/pgmkit
//
// # Quick Start
//
// Decoding the classic ice-cream HMM:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/pgmkit/hmm"
//	)
//
//	func main() {
//	    sc := hmm.IceCream()
//
//	    fw, err := hmm.Forward(sc.Model, sc.Observations)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    vt, err := hmm.Viterbi(sc.Model, sc.Observations)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    names, err := sc.Model.StateNames(vt.Path)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("P(O|λ):", fw.Probability)
//	    fmt.Println("path:", names)
//	}
//
// # Packages
//
//   - hmm: Forward, Backward, Viterbi and state posteriors for discrete HMMs
//   - mle: sampling and maximum-likelihood estimation for the normal,
//     poisson, binomial and exponential families
//   - tree: entropy, information gain and binary-split tree induction
//   - metrics: classification accuracy and parameter accuracy
//   - preprocessing: plurality imputation of missing categorical features
//   - report: PNG plots of samples, fitted densities and HMM tables
//   - core/model: fitted-state bookkeeping
//   - core/parallel: parallel processing utilities
//   - pkg/errors: error taxonomy and warnings
//   - pkg/log: structured logging
//
// # Logging
//
// Library code logs at Debug level through pkg/log, which defaults to a
// zerolog logger on stderr at Info level. Raise the verbosity with
//
//	log.SetupZerolog(os.Stderr, log.LevelDebug)
//
// # License
//
// pgmkit is released under the MIT License.
package pgmkit
