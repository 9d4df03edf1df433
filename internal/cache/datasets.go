package cache

import (
	"fmt"
	"strconv"

	"equity-factor-lab/internal/domain"
)

// Column layouts of the dataset files. Derived columns (market equity,
// book equity, report dates) are recomputed on load and never cached.
var (
	monthlyHeader      = []string{"permno", "mthcaldt", "mthret", "mthretx", "mthprc", "shrout", "primaryexch"}
	dailyHeader        = []string{"permno", "dlycaldt", "dlyret", "dlyretx"}
	indexHeader        = []string{"caldt", "vwretd", "vwretx"}
	fundamentalsHeader = []string{
		"gvkey", "datadate", "fyear", "at", "seq", "txditc", "pstkrv", "pstkl", "pstk",
		"ib", "dp", "act", "che", "lct", "dlc", "txp", "dltt", "sale", "dvc",
	}
	linkHeader = []string{"gvkey", "permno", "linkdt", "linkenddt"}
)

// SaveMonthlyStock writes monthly security rows under key.
func (s *Store) SaveMonthlyStock(key string, rows []domain.SecurityMonth) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Permno),
			formatDate(r.Date),
			formatFloat(r.Return),
			formatFloat(r.ReturnExDiv),
			formatFloat(r.Price),
			formatFloat(r.SharesOut),
			r.PrimaryExch,
		})
	}
	return s.save(key, monthlyHeader, records)
}

// LoadMonthlyStock reads monthly security rows stored under key.
func (s *Store) LoadMonthlyStock(key string) ([]domain.SecurityMonth, error) {
	records, err := s.load(key)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.SecurityMonth, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(monthlyHeader) {
			return nil, fmt.Errorf("cache file %s: row %d has %d fields, want %d", key, i+1, len(rec), len(monthlyHeader))
		}
		var (
			r    domain.SecurityMonth
			errs [5]error
		)
		r.Permno, errs[0] = strconv.Atoi(rec[0])
		r.Date, errs[1] = parseDate(rec[1])
		r.Return, errs[2] = parseFloat(rec[2])
		r.ReturnExDiv, errs[3] = parseFloat(rec[3])
		r.Price, errs[4] = parseFloat(rec[4])
		r.SharesOut, err = parseFloat(rec[5])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, e)
			}
		}
		r.PrimaryExch = rec[6]
		rows = append(rows, r)
	}
	return rows, nil
}

// SaveDailyStock writes daily security rows under key.
func (s *Store) SaveDailyStock(key string, rows []domain.SecurityDay) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Permno),
			formatDate(r.Date),
			formatFloat(r.Return),
			formatFloat(r.ReturnExDiv),
		})
	}
	return s.save(key, dailyHeader, records)
}

// LoadDailyStock reads daily security rows stored under key.
func (s *Store) LoadDailyStock(key string) ([]domain.SecurityDay, error) {
	records, err := s.load(key)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.SecurityDay, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(dailyHeader) {
			return nil, fmt.Errorf("cache file %s: row %d has %d fields, want %d", key, i+1, len(rec), len(dailyHeader))
		}
		var (
			r    domain.SecurityDay
			errs [4]error
		)
		r.Permno, errs[0] = strconv.Atoi(rec[0])
		r.Date, errs[1] = parseDate(rec[1])
		r.Return, errs[2] = parseFloat(rec[2])
		r.ReturnExDiv, errs[3] = parseFloat(rec[3])
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, e)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// SaveDailyIndex writes daily index rows under key.
func (s *Store) SaveDailyIndex(key string, rows []domain.IndexDay) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatDate(r.Date),
			formatFloat(r.Return),
			formatFloat(r.ReturnExDiv),
		})
	}
	return s.save(key, indexHeader, records)
}

// LoadDailyIndex reads daily index rows stored under key.
func (s *Store) LoadDailyIndex(key string) ([]domain.IndexDay, error) {
	records, err := s.load(key)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.IndexDay, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(indexHeader) {
			return nil, fmt.Errorf("cache file %s: row %d has %d fields, want %d", key, i+1, len(rec), len(indexHeader))
		}
		var (
			r    domain.IndexDay
			errs [3]error
		)
		r.Date, errs[0] = parseDate(rec[0])
		r.Return, errs[1] = parseFloat(rec[1])
		r.ReturnExDiv, errs[2] = parseFloat(rec[2])
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, e)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// SaveFundamentals writes fundamental rows under key. Derived fields are
// dropped; loads return them unset for normalization to fill in.
func (s *Store) SaveFundamentals(key string, rows []domain.Fundamentals) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.GVKey,
			formatDate(r.DataDate),
			strconv.Itoa(r.FiscalYear),
			formatFloat(r.Assets),
			formatFloat(r.Equity),
			formatFloat(r.DeferredTaxes),
			formatFloat(r.PreferredRedem),
			formatFloat(r.PreferredLiq),
			formatFloat(r.PreferredPar),
			formatFloat(r.Income),
			formatFloat(r.Depreciation),
			formatFloat(r.CurrentAssets),
			formatFloat(r.Cash),
			formatFloat(r.CurrentLiab),
			formatFloat(r.DebtCurrent),
			formatFloat(r.TaxesPayable),
			formatFloat(r.DebtLongTerm),
			formatFloat(r.Sales),
			formatFloat(r.Dividends),
		})
	}
	return s.save(key, fundamentalsHeader, records)
}

// LoadFundamentals reads fundamental rows stored under key.
func (s *Store) LoadFundamentals(key string) ([]domain.Fundamentals, error) {
	records, err := s.load(key)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.Fundamentals, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(fundamentalsHeader) {
			return nil, fmt.Errorf("cache file %s: row %d has %d fields, want %d", key, i+1, len(rec), len(fundamentalsHeader))
		}
		r := domain.Fundamentals{GVKey: rec[0]}
		r.DataDate, err = parseDate(rec[1])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		r.FiscalYear, err = strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		dests := []*float64{
			&r.Assets, &r.Equity, &r.DeferredTaxes, &r.PreferredRedem, &r.PreferredLiq,
			&r.PreferredPar, &r.Income, &r.Depreciation, &r.CurrentAssets, &r.Cash,
			&r.CurrentLiab, &r.DebtCurrent, &r.TaxesPayable, &r.DebtLongTerm, &r.Sales, &r.Dividends,
		}
		for j, dest := range dests {
			*dest, err = parseFloat(rec[3+j])
			if err != nil {
				return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// SaveLinkTable writes link rows under key. An open-ended link is stored
// with an empty linkenddt field.
func (s *Store) SaveLinkTable(key string, rows []domain.LinkRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.GVKey,
			strconv.Itoa(r.Permno),
			formatDate(r.LinkStart),
			formatDate(r.LinkEnd),
		})
	}
	return s.save(key, linkHeader, records)
}

// LoadLinkTable reads link rows stored under key.
func (s *Store) LoadLinkTable(key string) ([]domain.LinkRow, error) {
	records, err := s.load(key)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.LinkRow, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(linkHeader) {
			return nil, fmt.Errorf("cache file %s: row %d has %d fields, want %d", key, i+1, len(rec), len(linkHeader))
		}
		r := domain.LinkRow{GVKey: rec[0]}
		r.Permno, err = strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		r.LinkStart, err = parseDate(rec[2])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		r.LinkEnd, err = parseDate(rec[3])
		if err != nil {
			return nil, fmt.Errorf("cache file %s: row %d: %w", key, i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}
