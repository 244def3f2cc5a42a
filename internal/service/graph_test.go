package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCREService_FindCREsOfCRE(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)

	cre := mustAddCRE(t, svc, defs.NewCRE("", "CREname1", "CREdesc1"))
	groupless := mustAddCRE(t, svc, defs.NewCRE("", "CREname2", "CREdesc2"))
	group := mustAddCRE(t, svc, defs.NewCRE("", "GroupName1", "Groupdesc1"))
	group2 := mustAddCRE(t, svc, defs.NewCRE("", "GroupName2", "Groupdesc2"))
	onlyOneGroup := mustAddCRE(t, svc, defs.NewCRE("", "CREname3", "CREdesc3"))

	require.NoError(t, svc.AddInternalLink(ctx, group, cre, defs.LinkTypeContains))
	require.NoError(t, svc.AddInternalLink(ctx, group2, cre, defs.LinkTypeContains))
	require.NoError(t, svc.AddInternalLink(ctx, group, onlyOneGroup, defs.LinkTypeContains))

	groups, err := svc.FindCREsOfCRE(ctx, cre)
	require.NoError(t, err)
	assert.Equal(t, []string{"GroupName1", "GroupName2"}, creNames(groups))

	groups, err = svc.FindCREsOfCRE(ctx, onlyOneGroup)
	require.NoError(t, err)
	assert.Equal(t, []string{"GroupName1"}, creNames(groups))

	groups, err = svc.FindCREsOfCRE(ctx, groupless)
	require.NoError(t, err)
	assert.Nil(t, groups)

	_, err = svc.FindCREsOfCRE(ctx, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCREService_FindCREsOfStandard(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)

	cre := mustAddCRE(t, svc, defs.NewCRE("", "CREname1", "CREdesc1"))
	group := mustAddCRE(t, svc, defs.NewCRE("", "CREname2", "CREdesc2"))
	standard := mustAddStandard(t, svc, defs.NewStandard("standard1", "section1", "", ""))
	groupStandard := mustAddStandard(t, svc, defs.NewStandard("standard2", "section2", "", ""))
	loneStandard := mustAddStandard(t, svc, defs.NewStandard("standard3", "section3", "", ""))

	require.NoError(t, svc.AddLink(ctx, cre, standard, ""))
	require.NoError(t, svc.AddLink(ctx, group, standard, ""))
	require.NoError(t, svc.AddLink(ctx, group, groupStandard, ""))

	cres, err := svc.FindCREsOfStandard(ctx, standard)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREname1", "CREname2"}, creNames(cres))

	cres, err = svc.FindCREsOfStandard(ctx, groupStandard)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREname2"}, creNames(cres))

	cres, err = svc.FindCREsOfStandard(ctx, loneStandard)
	require.NoError(t, err)
	assert.Nil(t, cres)
}

func TestCREService_GetMaxInternalConnections(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)

	count, err := svc.GetMaxInternalConnections(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	lo := mustAddCRE(t, svc, defs.NewCRE("", "internal connections test lo", "ictlo"))
	hi := mustAddCRE(t, svc, defs.NewCRE("", "internal connections test hi", "icthi"))

	for i := 0; i < 100; i++ {
		cre := mustAddCRE(t, svc, defs.NewCRE("", fmt.Sprintf("%d name", i), fmt.Sprintf("%d desc", i)))

		// one low level cre in many groups
		require.NoError(t, svc.AddInternalLink(ctx, cre, lo, ""))
		// one high level cre over many low level ones
		require.NoError(t, svc.AddInternalLink(ctx, hi, cre, ""))

		if i == 0 {
			count, err = svc.GetMaxInternalConnections(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		}
	}

	count, err = svc.GetMaxInternalConnections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, count)
}
