package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
	"go.viam.com/test"

	"github.com/kinchain/kinchain/referenceframe"
	"github.com/kinchain/kinchain/utils"
)

const planarChainJSON = `{
	"name": "planar",
	"segments": [
		{"name": "j0", "joint": {"type": "revolute", "axis": {"z": 1}, "min": -3, "max": 3}, "tip": {"translation": {"x": 1}}},
		{"name": "j1", "joint": {"type": "revolute", "axis": {"z": 1}, "min": -3, "max": 3}, "tip": {"translation": {"x": 1}},
			"link": {"mass": 2}},
		{"name": "tool", "joint": {"type": "fixed"}, "tip": {"translation": {"z": 0.1}}}
	]
}`

const twoArmJSON = `{
	"chains": [
		{"name": "left", "segments": [
			{"name": "torso", "joint": {"type": "revolute", "axis": {"z": 1}, "min": -1, "max": 1}, "tip": {"translation": {"y": 1}}},
			{"name": "left_arm", "joint": {"type": "prismatic", "axis": {"x": 1}, "min": 0, "max": 1}}
		]},
		{"name": "right", "segments": [
			{"name": "torso", "joint": {"type": "revolute", "axis": {"z": 1}, "min": -1, "max": 1}, "tip": {"translation": {"y": -1}}},
			{"name": "right_arm", "joint": {"type": "prismatic", "axis": {"x": 1}, "min": 0, "max": 1}}
		]}
	]
}`

func writeChainFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"kinchain"}, args...))
	return out.String(), errOut.String(), err
}

func TestInfoAction(t *testing.T) {
	out, _, err := runApp(t, "info", "--chain", writeChainFile(t, planarChainJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `chain "planar": 3 segments, 2 dof, mass 2`)
	test.That(t, out, test.ShouldContainSubstring, "tool")
	test.That(t, out, test.ShouldContainSubstring, "rotational")
	test.That(t, out, test.ShouldContainSubstring, "-3 (-171.9 deg)")

	out, _, err = runApp(t, "info", "--chain", writeChainFile(t, twoArmJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "shared joint vector: [torso left_arm right_arm]")
	test.That(t, out, test.ShouldContainSubstring, "mean pose: [0 0.5 0.5]")

	_, _, err = runApp(t, "info", "--chain", writeChainFile(t, twoArmJSON), "--name", "leg")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = runApp(t, "info")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestForwardKinematicsAction(t *testing.T) {
	path := writeChainFile(t, planarChainJSON)
	out, errOut, err := runApp(t, "fk", "--chain", path, "--q", "0,0", "--layout", "PositionOnly", "--links")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldBeEmpty)
	test.That(t, out, test.ShouldContainSubstring, `chain "planar" (PositionOnly)`)
	test.That(t, out, test.ShouldContainSubstring, "base")
	test.That(t, out, test.ShouldContainSubstring, "tool")
	test.That(t, out, test.ShouldContainSubstring, "center of mass")

	out, errOut, err = runApp(t, "fk", "--chain", path, "--layout", "RawTransformObject", "--base", "1,2,3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "middle of the joint limits")
	test.That(t, out, test.ShouldContainSubstring, "RawTransformObject")

	_, _, err = runApp(t, "fk", "--chain", path, "--q", "0,0", "--layout", "PositionPlusQuaternion")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = runApp(t, "fk", "--chain", path, "--q", "0,0", "--base", "1,2")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = runApp(t, "fk", "--chain", path, "--q", "0")
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.NewIncorrectDoFError(1, 2).Error())

	out, _, err = runApp(t, "fk", "--chain", writeChainFile(t, twoArmJSON), "--q", "0.5,0.2,0.3", "--name", "right")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `chain "right"`)
	test.That(t, out, test.ShouldNotContainSubstring, `chain "left"`)
}

func TestJacobianAction(t *testing.T) {
	path := writeChainFile(t, planarChainJSON)
	out, _, err := runApp(t, "jacobian", "--chain", path, "--q", "0,0", "--layout", "PositionOnly")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `chain "planar" (PositionOnly, 3x2)`)
	test.That(t, out, test.ShouldContainSubstring, "columns: [j0 j1]")

	out, _, err = runApp(t, "jacobian", "--chain", path, "--q", "0,0", "--truncate", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "12x1")
	test.That(t, out, test.ShouldContainSubstring, "columns: [j0]")

	out, _, err = runApp(t, "jacobian", "--chain", path, "--q", "0,0", "--truncate", "3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "no actuated joints")

	_, _, err = runApp(t, "jacobian", "--chain", path, "--q", "0,0", "--truncate", "4")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidateAction(t *testing.T) {
	path := writeChainFile(t, twoArmJSON)
	out, _, err := runApp(t, "validate", "--chain", path, "--q", "0,0.5,0.5")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "within limits")

	_, errOut, err := runApp(t, "validate", "--chain", path, "--q", "2,0.5,5")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errOut, test.ShouldBeEmpty)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint vector out of limits")
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)
	test.That(t, err.Error(), test.ShouldContainSubstring, "right_arm")
	// torso belongs to both arms but is one entry of the shared vector
	test.That(t, strings.Count(err.Error(), `"torso"`), test.ShouldEqual, 1)
	_, isMulti := err.(cli.MultiError)
	test.That(t, isMulti, test.ShouldBeFalse)

	_, _, err = runApp(t, "validate", "--chain", path, "--q", "0,0.5")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchemaAction(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"segments"`)
	test.That(t, out, test.ShouldContainSubstring, `"joint"`)
	test.That(t, out, test.ShouldNotContainSubstring, `"chains"`)

	out, _, err = runApp(t, "schema", "--dict")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"chains"`)
}

func TestLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "kinchain.log")
	_, _, err := runApp(t, "--log-file", logFile, "info", "--chain", writeChainFile(t, twoArmJSON))
	test.That(t, err, test.ShouldBeNil)

	//nolint:gosec
	data, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, `"msg":"loaded chains"`)
	test.That(t, string(data), test.ShouldContainSubstring, `"dof":3`)

	// later runs without the flag leave the file alone
	_, _, err = runApp(t, "info", "--chain", writeChainFile(t, planarChainJSON))
	test.That(t, err, test.ShouldBeNil)
	again, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(again), test.ShouldEqual, len(data))

	debugFile := filepath.Join(t.TempDir(), "debug.log")
	_, _, err = runApp(t, "--debug", "--log-file", debugFile, "validate", "--chain", writeChainFile(t, twoArmJSON), "--q", "0,0,0")
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	data, err = os.ReadFile(debugFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, `"msg":"validating joint vector"`)
	test.That(t, string(data), test.ShouldContainSubstring, `"level":"DEBUG"`)
}

func TestDegrees(t *testing.T) {
	path := writeChainFile(t, planarChainJSON)
	radians := fmt.Sprint(utils.DegToRad(90))
	want, _, err := runApp(t, "fk", "--chain", path, "--q", radians+",0", "--layout", "PositionOnly")
	test.That(t, err, test.ShouldBeNil)
	got, _, err := runApp(t, "fk", "--chain", path, "--q", "90,0", "--degrees", "--layout", "PositionOnly")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, want)

	jac, _, err := runApp(t, "jacobian", "--chain", path, "--q", "90,0", "--degrees", "--layout", "PositionOnly")
	test.That(t, err, test.ShouldBeNil)
	wantJac, _, err := runApp(t, "jacobian", "--chain", path, "--q", radians+",0", "--layout", "PositionOnly")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jac, test.ShouldEqual, wantJac)

	// 50 degrees is within the torso limits of one radian, 50 radians is not
	arms := writeChainFile(t, twoArmJSON)
	_, _, err = runApp(t, "validate", "--chain", arms, "--q", "50,0.5,0.5", "--degrees")
	test.That(t, err, test.ShouldBeNil)
	_, _, err = runApp(t, "validate", "--chain", arms, "--q", "50,0.5,0.5")
	test.That(t, err.Error(), test.ShouldContainSubstring, "torso")

	// prismatic values are never converted
	_, _, err = runApp(t, "validate", "--chain", arms, "--q", "0,0.5,5", "--degrees")
	test.That(t, err.Error(), test.ShouldContainSubstring, "right_arm")
}
