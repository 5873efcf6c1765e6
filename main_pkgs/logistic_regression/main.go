package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"lattigov5_hecompute/auxiliary_io"
	"lattigov5_hecompute/configs"
	ltx "lattigov5_hecompute/lattigo_extension"
	nonpolyfunc "lattigov5_hecompute/nonpoly_func"
	dataProc "lattigov5_hecompute/src_pkgs/data_process"
	mathFunc "lattigov5_hecompute/src_pkgs/mathematical_func"
	"lattigov5_hecompute/src_pkgs/predict"

	"gonum.org/v1/gonum/mat"
)

var (
	flagData     = flag.String("data", "lbw.txt", "CSV samples with a header line")
	flagLabel    = flag.Int("label", -1, "label column (default: last)")
	flagWeights  = flag.String("weights", "", "xlsx file holding plaintext weights as a single-row sheet \"weights\"; fitted in the clear when empty")
	flagConfig   = flag.String("config", "", "JSON run configuration")
	flagTestPart = flag.Float64("test", 0.2, "fraction of samples held out for scoring")
)

func main() {
	flag.Parse()

	cfg := configs.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = configs.Load(*flagConfig); err != nil {
			log.Fatal(err)
		}
	}
	params, err := cfg.Validate()
	if err != nil {
		log.Fatal(err)
	}

	// preprocessing
	rawData, err := dataProc.ReadAllFromCSV(*flagData)
	if err != nil {
		log.Fatal(err)
	}
	_, cols := rawData.Dims()
	label := *flagLabel
	if label < 0 {
		label = cols - 1
	}
	normData := dataProc.NormalizeMaxMin(rawData, label)
	rng := rand.New(rand.NewSource(cfg.Seed))
	testData, trainData, err := dataProc.SplitData(normData, *flagTestPart, rng)
	if err != nil {
		log.Fatal(err)
	}
	testX, testY, err := dataProc.SplitLabels(testData, label)
	if err != nil {
		log.Fatal(err)
	}

	weights, err := loadWeights(*flagWeights, trainData, label)
	if err != nil {
		log.Fatal(err)
	}
	d := cfg.Dimension
	if len(weights) > d {
		log.Fatalf("%d features do not fit dimension %d", len(weights), d)
	}
	weights = append(weights, make([]float64, d-len(weights))...)

	// keys
	kc := ltx.GenKeyChain(params, nil)
	eng := ltx.NewEngine(params, kc.Evk, kc.Encryptor)
	approx := nonpolyfunc.PolynomialApproximator{
		Evaluator:    nonpolyfunc.NewPolynomialEvaluator(eng),
		Coefficients: cfg.Coefficients,
	}
	scorer := predict.NewFeatureScorer(eng, approx)

	// encrypted scoring, one d×d block of samples at a time
	blocks, err := dataProc.Blocks(testX, d)
	if err != nil {
		log.Fatal(err)
	}
	rows, _ := testX.Dims()
	scores := make([]float64, 0, len(blocks)*d)
	for _, block := range blocks {
		features, err := dataProc.EncFeatureColumns(eng, block, params.MaxLevel())
		if err != nil {
			log.Fatal(err)
		}
		ct, err := scorer.ScoreFeatures(features, weights)
		if err != nil {
			log.Fatal(err)
		}
		values, err := auxiliary_io.DecryptDecode(eng, kc.Decryptor, ct, d)
		if err != nil {
			log.Fatal(err)
		}
		scores = append(scores, values...)
	}
	scores = scores[:rows]

	// plaintext reference with the exact sigmoid
	want := make([]float64, rows)
	for i := range want {
		want[i] = mathFunc.Sigmoid(mat.Dot(testX.RowView(i), mat.NewVecDense(len(weights[:cols-1]), weights[:cols-1])))
	}

	accTest, err := predict.Accuracy(predict.Classify(scores, cfg.Threshold), testY)
	if err != nil {
		log.Fatal(err)
	}
	accWant, err := predict.Accuracy(predict.Classify(want, cfg.Threshold), testY)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Scores:")
	if err = auxiliary_io.PrintVectorF64(os.Stdout, scores, false); err != nil {
		log.Fatal(err)
	}
	fmt.Println("AccuracyTest:", accTest)
	fmt.Println("AccuracyWant:", accWant)
}

// loadWeights reads the weights from path, or fits them in the clear on trainData by
// gradient descent on the logistic loss.
func loadWeights(path string, trainData *mat.Dense, label int) ([]float64, error) {
	if path != "" {
		m, err := dataProc.ReadMatrixXLSX(path, "weights")
		if err != nil {
			return nil, err
		}
		return mat.Row(nil, 0, m), nil
	}
	X, y, err := dataProc.SplitLabels(trainData, label)
	if err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	weights := make([]float64, cols)
	w := mat.NewVecDense(cols, weights)
	grad := mat.NewVecDense(cols, nil)
	for t := 0; t < 200; t++ {
		grad.Zero()
		for i := 0; i < rows; i++ {
			residual := mathFunc.Sigmoid(mat.Dot(X.RowView(i), w)) - float64(y[i])
			grad.AddScaledVec(grad, residual, X.RowView(i))
		}
		w.AddScaledVec(w, -4/float64(rows), grad)
	}
	return weights, nil
}
