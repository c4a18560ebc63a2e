package common

import (
	"github.com/stretchr/testify/suite"
	"testing"
)

type MoneyTestSuite struct {
	suite.Suite
}

func TestMoneyTestSuite(t *testing.T) {
	suite.Run(t, new(MoneyTestSuite))
}

func (s *MoneyTestSuite) TestMinorToMajor() {
	s.Equal("50.00", MinorToMajor(5000).StringFixed(MinorUnitExponent))
	s.Equal("0.99", MinorToMajor(99).StringFixed(MinorUnitExponent))
}

func (s *MoneyTestSuite) TestFormatAmount() {
	printer := NewAmountPrinter()

	s.Equal("Free", FormatAmount(printer, 0, "INR"))
	s.Equal("XX1 50.00", FormatAmount(printer, 5000, "xx1"))
	s.Contains(FormatAmount(printer, 5000, "INR"), "50")
}
